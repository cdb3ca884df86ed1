package naming

// Well-known ports the naming server's two skeletons bind to. Clients and
// storage servers connect to these without discovery.
const (
	ServicePort      = 8900
	RegistrationPort = 8901
)
