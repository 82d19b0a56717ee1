package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"TrendWatch/internal/domain/models"
	"TrendWatch/internal/service/ratelimit"
	pkgcache "TrendWatch/pkg/cache"
	"TrendWatch/pkg/config"
	"TrendWatch/pkg/database"
	xhttp "TrendWatch/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingPublisher struct{ closed bool }

func (p *closingPublisher) PublishWatchlistEvent(context.Context, models.WatchlistEvent) error {
	return nil
}

func (p *closingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestRunContextShutsDownInOrder(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	db, err := database.NewClient(
		database.WithDriver(database.DriverSQLite),
		database.WithDSN(filepath.Join(t.TempDir(), "app.db")),
	)
	require.NoError(t, err)

	mem := pkgcache.NewMemoryCache()
	pub := &closingPublisher{}
	srv := xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0),
		xhttp.WithTimeouts(time.Second, time.Second, time.Second))

	app := New(cfg, srv, db, mem, pub, ratelimit.New(1, 1), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- app.RunContext(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	assert.True(t, pub.closed)
	assert.Error(t, db.Health(context.Background()))
}
