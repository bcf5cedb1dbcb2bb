package state

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const etcdDefaultKey = "layermake/state"

// EtcdBackend stores the snapshot under one etcd key, addressed as
// etcd://host:port/key/path.
type EtcdBackend struct {
	client *clientv3.Client
	key    string
}

// NewEtcdBackend connects to the etcd endpoint from the URI.
func NewEtcdBackend(ctx context.Context, u *url.URL) (*EtcdBackend, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("etcd state location must be etcd://host:port/key, got %q", u.String())
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		key = etcdDefaultKey
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{u.Host},
		DialTimeout: 5 * time.Second,
		Context:     ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting etcd state backend: %w", err)
	}
	return &EtcdBackend{client: cli, key: key}, nil
}

// Load implements Backend. A missing key means no snapshot yet.
func (b *EtcdBackend) Load(ctx context.Context) (*Snapshot, error) {
	resp, err := b.client.Get(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("loading etcd key %q: %w", b.key, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, nil
	}

	snap, err := DecodeSnapshot(resp.Kvs[0].Value)
	if err != nil {
		return nil, fmt.Errorf("decoding etcd key %q: %w", b.key, err)
	}
	return snap, nil
}

// Save implements Backend.
func (b *EtcdBackend) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := b.client.Put(ctx, b.key, string(data)); err != nil {
		return fmt.Errorf("saving etcd key %q: %w", b.key, err)
	}
	return nil
}

// Close implements Backend.
func (b *EtcdBackend) Close() error {
	return b.client.Close()
}
