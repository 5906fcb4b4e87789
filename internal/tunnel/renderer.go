package tunnel

import (
	"strconv"
	"strings"
	"text/template"

	"vpn-backend/internal/models"
)

// DNS profile offered to clients.
const (
	DNSSimple  = "DNS_SIMPLE"
	DNSAdBlock = "DNS_ADBLOCK"
)

const configTemplate = `[Interface]
ListenPort = 51280
PrivateKey = {{.PrivateKey}}
Address = {{.Address}}
DNS = {{.DNS}}

[Peer]
PublicKey = {{.PublicKey}}
AllowedIPs = 0.0.0.0/0
Endpoint = {{.EndpointIP}}:{{.Port}}`

var tmpl = template.Must(template.New("wg").Parse(configTemplate))

// Renderer produces a tunnel config for one client on one server.
type Renderer interface {
	Render(server models.Server, dnsType, privateKey, port string) string
}

// WireGuardRenderer renders the standard WireGuard ini config.
type WireGuardRenderer struct{}

func (WireGuardRenderer) Render(server models.Server, dnsType, privateKey, port string) string {
	dns := server.DNSSimple
	if dnsType == DNSAdBlock {
		dns = server.DNSAdBlock
	}
	if port == "" {
		port = strconv.Itoa(server.EndpointPort)
	}

	var b strings.Builder
	tmpl.Execute(&b, map[string]string{
		"PrivateKey": privateKey,
		"Address":    server.Address,
		"DNS":        dns,
		"PublicKey":  server.PublicKey,
		"EndpointIP": server.EndpointIP,
		"Port":       port,
	})
	return b.String()
}

// ExitPort derives the listen port used when tunneling out through a
// different country: the decimal char codes of the country code, joined.
// "DE" becomes "6869".
func ExitPort(country string) string {
	var b strings.Builder
	for _, c := range country {
		b.WriteString(strconv.Itoa(int(c)))
	}
	return b.String()
}
