// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based settings storage
//   - PromptStore: user-editable prompt templates with built-in defaults
//   - Watcher: fsnotify-driven prompt reloading for long-running sessions
package file
