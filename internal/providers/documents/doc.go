// Package documents exposes the document location manager as the
// "documents" service.
//
// Tools:
//   - documents.set_document_path(path)
//   - documents.get_document_path() returns the effective directory
//   - documents.clear_document_path()
//   - documents.save_file(file_name, file_data) returns the written path
//   - documents.get_file_path(file_name) returns the path of an existing file
//   - documents.test_file_access(file_name[, format]) returns a report
//
// Successful results carry the return value under data.value. Failed
// results carry a message and a kind: one of the documents error kinds or
// invalid_request for malformed parameters.
package documents
