// Package schema parses the survey wire format into the typed model.
//
// The wire format is a top-level sequence of group records (groupId,
// groupName, lstViewQuestionModel) whose field records carry questionId,
// question, questionType and optional constraints. JSON and YAML input are
// both accepted.
//
// Parsing follows a partial-success policy: structural problems with the
// document or a group are fatal (*SchemaParseError), while a broken field
// record is dropped and reported as a ParseWarning. A calculation that fails
// to compile is reported as a warning and its field is treated as a plain
// user-entered field for the rest of the session. Duplicate field ids are
// always fatal because formulas resolve against a single namespace.
package schema
