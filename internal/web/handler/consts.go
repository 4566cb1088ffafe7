package handler

const (
	// APIPath is the prefix of every unit scoped API route.
	APIPath = "/api/units/:unit_id"

	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ErrNilServiceFatalLogMsg is used if a handler is initialised without its engine.
	ErrNilServiceFatalLogMsg = "router or service is nil"
)
