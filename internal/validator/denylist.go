package validator

// Denylisted phrases checked against the serialized metadata of every
// signal before it may be forwarded to the advisory service. This is a
// coarse substring filter against the obvious injection attempts, not a
// general sanitizer. Static data: extend here, not in the check logic.
var unsafePhrases = []string{
	"ignore previous instructions",
	"system prompt",
	"delete all",
	"drop table",
	"<script>",
}
