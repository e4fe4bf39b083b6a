package sampler

import "errors"

// errNoJSONPayload signals that the feed command produced no parsable
// JSON line on stdout
var errNoJSONPayload = errors.New("no JSON payload in stats output")

type errCommandFailed string

func (e errCommandFailed) Error() string {
	return "stats command failed: " + string(e)
}
