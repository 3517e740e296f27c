package handlers

// Request is a transport-neutral HTTP event. Path is either a concrete path
// (/pizza/42) or a resource template (/pizza/{id}) whose values are carried
// in PathParameters.
type Request struct {
	Method          string
	Path            string
	PathParameters  map[string]string
	QueryParameters map[string]string
	Headers         map[string]string
	Body            string
}

// Response is the transport-neutral reply. Body always holds JSON, except for
// the empty preflight reply.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}
