// Package config provides local-first configuration for locomplete.
//
// All configuration lives in the project's .locomplete/ directory:
//
//	.locomplete/
//	├── config.json        # Main configuration (committed to git)
//	├── snippets.yaml      # Snippet definitions (optional)
//	├── locomplete.log     # Rotating log file
//	└── .gitignore         # Keeps logs out of git
//
// config.json holds flat settings plus per-language keyword lists:
//
//	{
//	  "gather_timeout_ms": 2000,
//	  "commit_timeout_ms": 1000,
//	  "page_size": 8,
//	  "start_in_suggestion_mode": false,
//	  "suggestion_description": "<new>",
//	  "word_min_length": 3,
//	  "snippets_file": "snippets.yaml",
//	  "keywords": {"go": ["func", "return"]},
//	  "theme": "fire",
//	  "log": {"file": "locomplete.log", "debug": false}
//	}
//
// Path values may reference environment variables with $VAR or ${VAR}.
// Relative paths are resolved against .locomplete/ by Manager.Resolve.
//
// Manager.Watch reloads the file when it changes on disk, so tunables can be
// adjusted while the editor runs.
package config
