package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidAPIURL возвращается при разборе некорректного адреса сервиса.
var ErrInvalidAPIURL = errors.New("api url must be an absolute http(s) url")

// APIURL - значение флага с адресом сервиса объявлений.
type APIURL struct {
	URL string
}

func (a APIURL) String() string {
	return a.URL
}

func (a *APIURL) Set(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIURL
	}
	a.URL = strings.TrimRight(u.String(), "/") + "/"
	return nil
}

// NetAddress - значение флага host:port для dev-сервера.
type NetAddress struct {
	Host string
	Port int
}

func (a NetAddress) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set принимает host:port, [ipv6]:port или хост без порта (порт 8080).
func (a *NetAddress) Set(s string) error {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		var addrErr *net.AddrError
		if !errors.As(err, &addrErr) || addrErr.Err != "missing port in address" {
			return err
		}
		a.Host = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		a.Port = 8080
		return nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	a.Host = host
	a.Port = port
	return nil
}

// RegisterAPIFlag регистрирует флаг -api в fs.
func RegisterAPIFlag(fs *flag.FlagSet) *APIURL {
	u := &APIURL{}
	fs.Var(u, "api", "Sales items API base url, e.g. http://localhost:8080/api/")
	return u
}

// ParseServerFlags разбирает флаги dev-сервера и применяет их к cfg.
func ParseServerFlags(cfg *ServerConfig, args []string) error {
	fs := flag.NewFlagSet("fakeapi", flag.ContinueOnError)
	addr := &NetAddress{Host: cfg.Host, Port: cfg.Port}
	fs.Var(addr, "a", "Net address host:port")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Host = addr.Host
	cfg.Port = addr.Port
	return nil
}

// Override применяет адрес из флага, если он задан.
func (c *APIConfig) Override(u *APIURL) {
	if u != nil && u.URL != "" {
		c.BaseURL = u.URL
	}
}
