// Package sharedmimeinfo implements the [Shared MIME-info specification]: classifying files by
// MIME type from their name, their content, or both, and navigating the alias and subclass
// relationships between MIME types.
//
// A [DB] is built with [New] (reading $XDG_DATA_HOME and $XDG_DATA_DIRS) or
// [NewForDirectory] (a single directory tree), and answers queries such as
// [DB.GetMimeTypesFromFileName], [DB.GetMimeTypeForData], and the combined [DB.NewGuess]
// builder. For example, application/ld+json is a subclass of application/json, which in turn
// is a subclass of application/json5; [DB.MimeTypeSubclass] answers that question directly.
//
// [Shared MIME-info specification]: https://specifications.freedesktop.org/shared-mime-info-spec/0.22/
package sharedmimeinfo
