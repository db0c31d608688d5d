// Package key turns raw input events into canonical key tokens.
//
// A Token is the string form of one normalized event:
//
//	<[S-][A-][C-][M-][N-]name>
//
// e.g. "<a>", "<G>", "<C-a>", "<Esc>", "<S-Tab>", "<2-LeftMouse>".
//
// # Normalization
//
// Normalize prefers the printable char code of a key event over its
// physical key code. A char code already carries Shift ("B" rather than
// "b"), so S- is dropped on that path; a char code below 32 already
// carries Ctrl (Ctrl+[ is Esc), so C- is dropped as well. Events that
// yield no token are reported with ok == false and belong to the host.
//
// # Key Specifications
//
// ParseSpec reads the notation used in keymaps and produces the same
// tokens Normalize emits:
//
//   - Bare characters: "gg", "G", "0"
//   - Vim-style groups: "<C-a>", "<CR>", "<Esc>", "<lt>", "<Bar>"
//   - Mouse groups: "<LeftMouse>", "<2-LeftMouse>", "<RightRelease>"
package key
