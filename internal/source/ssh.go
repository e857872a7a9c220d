package source

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/my2lite/my2lite/internal/config"
)

var tunnelSeq atomic.Int64

// Tunnel is an SSH client registered with the MySQL driver as a dial network,
// so connections reach MySQL through the jump host without a local listener.
type Tunnel struct {
	client  *ssh.Client
	network string
}

// OpenTunnel connects to the SSH jump host described by cfg.
func OpenTunnel(cfg config.SSHConfig) (*Tunnel, error) {
	clientCfg, err := sshClientConfig(cfg)
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to SSH server %s: %w", addr, err)
	}

	t := &Tunnel{
		client:  client,
		network: fmt.Sprintf("ssh%d", tunnelSeq.Add(1)),
	}
	mysql.RegisterDialContext(t.network, func(ctx context.Context, addr string) (net.Conn, error) {
		return t.client.DialContext(ctx, "tcp", addr)
	})
	return t, nil
}

func sshClientConfig(cfg config.SSHConfig) (*ssh.ClientConfig, error) {
	key, err := os.ReadFile(config.ExpandHome(cfg.KeyFile))
	if err != nil {
		return nil, fmt.Errorf("reading SSH private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parsing SSH private key: %w", err)
	}

	hostKeys := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHosts != "" {
		hostKeys, err = knownhosts.New(config.ExpandHome(cfg.KnownHosts))
		if err != nil {
			return nil, fmt.Errorf("loading known hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeys,
	}, nil
}

// Network is the driver network name to use in place of "tcp".
func (t *Tunnel) Network() string {
	return t.network
}

func (t *Tunnel) Close() error {
	return t.client.Close()
}
