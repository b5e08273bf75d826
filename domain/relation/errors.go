package relation

import "errors"

// Domain errors for relation lookup and compilation.
// They are always returned joined with calendar.ErrInvalidArgument.
var (
	// ErrUnknownRelation is returned when a relation name is not registered.
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrDuplicateRelation is returned when two definitions share a name.
	ErrDuplicateRelation = errors.New("duplicate relation")

	// ErrInvalidDefinition is returned when a definition is incomplete.
	ErrInvalidDefinition = errors.New("invalid relation definition")

	// ErrMissingParameter is returned when a required parameter is absent.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrMalformedParameter is returned when a parameter has the wrong width or is not numeric.
	ErrMalformedParameter = errors.New("malformed parameter")

	// ErrNoSession is returned when a session-scoped relation selects neither AM nor PM.
	ErrNoSession = errors.New("at least one of am or pm must be selected")
)
