// Package store persists chat messages in ScyllaDB. Ids are assigned from a
// snowflake node at insert time, so they are unique and monotonically
// increasing without a round trip.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/samber/lo"

	"github.com/novachat/nova-chat/pkg/chat"
	"github.com/novachat/nova-chat/pkg/model"
	"github.com/novachat/nova-chat/pkg/snowflake"
)

// Single chat room for now; the partition key keeps the door open.
const room = "general"

type Scylla struct {
	session *gocql.Session
	node    *snowflake.Node
}

func newCluster(hosts []string, keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.ConnectTimeout = 5 * time.Second
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 3,
		Min:        100 * time.Millisecond,
		Max:        1 * time.Second,
	}
	return cluster
}

// EnsureSchema creates the keyspace and messages table if they do not exist.
// Clustering by id descending keeps "recent messages" a cheap read.
func EnsureSchema(hosts []string, keyspace string) error {
	sys, err := newCluster(hosts, "system").CreateSession()
	if err != nil {
		return fmt.Errorf("connect to system keyspace: %w", err)
	}
	err = sys.Query(fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
		WITH REPLICATION = { 'class' : 'SimpleStrategy', 'replication_factor' : 1 }`, keyspace)).Exec()
	sys.Close()
	if err != nil {
		return fmt.Errorf("create keyspace: %w", err)
	}

	session, err := newCluster(hosts, keyspace).CreateSession()
	if err != nil {
		return fmt.Errorf("connect to %s keyspace: %w", keyspace, err)
	}
	defer session.Close()

	if err := session.Query(`CREATE TABLE IF NOT EXISTS messages (
		room text,
		id bigint,
		username text,
		avatar_url text,
		message text,
		created_at timestamp,
		PRIMARY KEY (room, id)
	) WITH CLUSTERING ORDER BY (id DESC)`).Exec(); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}
	return nil
}

func New(hosts []string, keyspace string, nodeID int64) (*Scylla, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	session, err := newCluster(hosts, keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to scylla: %w", err)
	}
	return &Scylla{session: session, node: node}, nil
}

func (s *Scylla) Close() {
	s.session.Close()
}

func (s *Scylla) Insert(ctx context.Context, msg model.Message) (model.Message, error) {
	msg.ID = s.node.Generate()

	err := s.session.Query(
		`INSERT INTO messages (room, id, username, avatar_url, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		room, msg.ID, msg.Username, msg.AvatarURL, msg.Text, msg.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return model.Message{}, fmt.Errorf("%w: insert: %v", chat.ErrStoreUnavailable, err)
	}
	return msg, nil
}

func (s *Scylla) SelectRecent(ctx context.Context, limit int) ([]model.Message, error) {
	iter := s.session.Query(
		`SELECT id, username, avatar_url, message, created_at FROM messages WHERE room = ? ORDER BY id DESC LIMIT ?`,
		room, limit,
	).WithContext(ctx).Iter()

	var (
		msgs []model.Message
		msg  model.Message
	)
	for iter.Scan(&msg.ID, &msg.Username, &msg.AvatarURL, &msg.Text, &msg.CreatedAt) {
		msgs = append(msgs, msg)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("%w: select recent: %v", chat.ErrStoreUnavailable, err)
	}

	// Rows arrive newest-first; callers want oldest-first.
	return lo.Reverse(msgs), nil
}

func (s *Scylla) DeleteByID(ctx context.Context, id int64) (bool, error) {
	applied, err := s.session.Query(
		`DELETE FROM messages WHERE room = ? AND id = ? IF EXISTS`,
		room, id,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, fmt.Errorf("%w: delete: %v", chat.ErrStoreUnavailable, err)
	}
	return applied, nil
}
