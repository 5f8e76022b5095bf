package config

import (
	"errors"
	"flag"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/Taycode/survey-app-api/secure"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	EncryptionKey []byte
	ExportDir     string
	Debug         bool
}

func ParseFlags() (cfg Config, err error) {
	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", 80, "listen port number (default 80)")
	flag.StringVar(&cfg.DBUrl, "db-url", "surveys.sqlite", "path to SQLite3 DB file (default surveys.sqlite)")
	flag.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for admin token encryption and decryption")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", 120, "admin token TTL in seconds (default 120)")
	var encryptionKey string
	flag.StringVar(&encryptionKey, "encryption-key", "", "base64 32-byte key for sensitive answer encryption")
	flag.StringVar(&cfg.ExportDir, "export-dir", "exports", "directory for async response exports (default exports)")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
		return
	}
	if encryptionKey == "" {
		err = errors.New("missing parameter -encryption-key")
		return
	}
	cfg.EncryptionKey, err = secure.ParseKey(encryptionKey)

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
