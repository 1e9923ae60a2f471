// Package state persists settings sections and orchestrates their lifecycle.
//
// A Store owns one settings.Collection per section (system and gameplay by
// default) plus the active player. It reads and writes whole documents through
// a Backend:
//
//	Backend.Load(runtime) -> codec.Document -> sections
//	sections -> codec.Document -> Backend.Save(runtime)
//
// Load falls back to the defaults snapshot when no runtime snapshot exists and
// writes it back as the new runtime snapshot. ResetToDefaults does the same
// unconditionally and then notifies every setting, changed or not.
//
// Committing staged edits goes through ApplyChanges: every dirty section is
// validated first, and only when all of them pass are the dirty items handed
// to the notifiers and the runtime snapshot saved.
//
// Deterministic keys:
//
//	Ref.Identifier() yields defaults/<domain>, runtime/<domain> or
//	user/<id>/<domain>. Backends key their records by it.
package state
