// Package document describes where template text comes from (files, fs.FS
// entries, URLs, readers) and the Loader contract that fetches it. The
// implementation lives in internal/document/loader; construct it through
// tplform.NewLoader.
package document
