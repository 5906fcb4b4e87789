package services

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"vpn-backend/internal/database"
	"vpn-backend/internal/models"
	"vpn-backend/internal/tunnel"

	"gorm.io/gorm"
)

var ErrServerNotFound = errors.New("no server for that country")

// ConfigRenderer renders the tunnel config text. Set at startup.
var ConfigRenderer tunnel.Renderer = tunnel.WireGuardRenderer{}

// BuildConfig renders one tunnel config for the account, base64-encoded.
// When exitCountry differs from the server country the traffic leaves
// through the exit country's derived port instead of the server default.
func BuildConfig(account models.Account, country, exitCountry, dnsType string) (string, error) {
	var server models.Server
	if err := database.DB.Where("country = ?", country).First(&server).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrServerNotFound
		}
		return "", err
	}

	port := ""
	if exitCountry != country {
		port = tunnel.ExitPort(exitCountry)
	}

	cfg := ConfigRenderer.Render(server, dnsType, account.PrivateKey, port)
	return base64.StdEncoding.EncodeToString([]byte(cfg)), nil
}

// BuildAllConfigsZip bundles every server's configs for the account into a
// zip: per server a plain and an ad-block config, plus cross-exit variants
// for every other country. Returned base64-encoded.
func BuildAllConfigsZip(account models.Account) (string, error) {
	var servers []models.Server
	if err := database.DB.Find(&servers).Error; err != nil {
		return "", err
	}

	seen := make(map[string]bool)
	var countries []string
	for _, s := range servers {
		if !seen[s.Country] {
			seen[s.Country] = true
			countries = append(countries, s.Country)
		}
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	add := func(name, content string) error {
		f, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = f.Write([]byte(content))
		return err
	}

	for _, server := range servers {
		if err := add(fmt.Sprintf("%s.conf", server.Country),
			ConfigRenderer.Render(server, tunnel.DNSSimple, account.PrivateKey, "")); err != nil {
			return "", err
		}
		if err := add(fmt.Sprintf("%s - AdBlock.conf", server.Country),
			ConfigRenderer.Render(server, tunnel.DNSAdBlock, account.PrivateKey, "")); err != nil {
			return "", err
		}
		for _, country := range countries {
			if country == server.Country {
				continue
			}
			port := tunnel.ExitPort(country)
			if err := add(fmt.Sprintf("%s - %s.conf", server.Country, country),
				ConfigRenderer.Render(server, tunnel.DNSSimple, account.PrivateKey, port)); err != nil {
				return "", err
			}
			if err := add(fmt.Sprintf("%s - %s - AdBlock.conf", server.Country, country),
				ConfigRenderer.Render(server, tunnel.DNSAdBlock, account.PrivateKey, port)); err != nil {
				return "", err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// IPInfo reports whether the caller's IP belongs to one of our servers.
func IPInfo(ip string) (bool, error) {
	var count int64
	if err := database.DB.Model(&models.Server{}).Where("ip = ?", ip).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
