package models

// Server is a VPN exit node. DNS fields are the resolvers offered to
// clients; EndpointIP/Port is the public WireGuard endpoint.
type Server struct {
	ID           uint   `gorm:"primarykey"`
	Country      string `gorm:"index;not null;size:2"`
	IP           string `gorm:"index"`
	Address      string // client interface address
	DNSSimple    string
	DNSAdBlock   string
	PublicKey    string
	EndpointIP   string
	EndpointPort int
}
