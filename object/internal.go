package object

// Internal selectors the compiler emits to implement object construction
// and definition attachment without dedicated opcodes. Each begins with
// a NUL byte, which the lexer can never produce as part of a NAME or
// OPERATOR token, so these can never collide with a user-written
// selector.
const (
	// SelNew creates a fresh Dynamic whose prototype is the receiver.
	SelNew = "\x00new"

	// SelInstallMethod installs args[1] (a block) under the selector
	// named by args[0] (a string) on the receiver.
	SelInstallMethod = "\x00installMethod"

	// SelInit is the selector under which an object literal's or def
	// block's field/method setup is installed, then immediately sent to
	// the target so it runs with self bound to that target.
	SelInit = "\x00init"
)
