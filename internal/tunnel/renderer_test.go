package tunnel

import (
	"testing"

	"vpn-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

var testServer = models.Server{
	Country:      "DE",
	Address:      "10.0.0.2/32",
	DNSSimple:    "10.0.0.1",
	DNSAdBlock:   "10.0.0.3",
	PublicKey:    "server-public-key",
	EndpointIP:   "1.2.3.4",
	EndpointPort: 51820,
}

func TestRender(t *testing.T) {
	cfg := WireGuardRenderer{}.Render(testServer, DNSSimple, "client-private-key", "")

	assert.Equal(t, `[Interface]
ListenPort = 51280
PrivateKey = client-private-key
Address = 10.0.0.2/32
DNS = 10.0.0.1

[Peer]
PublicKey = server-public-key
AllowedIPs = 0.0.0.0/0
Endpoint = 1.2.3.4:51820`, cfg)
}

func TestRenderAdBlockDNS(t *testing.T) {
	cfg := WireGuardRenderer{}.Render(testServer, DNSAdBlock, "k", "")
	assert.Contains(t, cfg, "DNS = 10.0.0.3")
}

func TestRenderPortOverride(t *testing.T) {
	cfg := WireGuardRenderer{}.Render(testServer, DNSSimple, "k", "7876")
	assert.Contains(t, cfg, "Endpoint = 1.2.3.4:7876")
}

func TestExitPort(t *testing.T) {
	assert.Equal(t, "6869", ExitPort("DE"))
	assert.Equal(t, "7876", ExitPort("NL"))
	assert.Equal(t, "", ExitPort(""))
}
