package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/my2lite/my2lite/internal/source"
)

func mockSource() *source.MockReader {
	return &source.MockReader{
		Tables: []source.TableInfo{
			{Name: "users", RowCount: 10, SizeBytes: 16384},
			{Name: "orders", RowCount: 200, SizeBytes: 65536},
			{Name: "tmp_import", RowCount: 5},
			{Name: "broken"},
		},
		Creates: map[string]string{
			"users": "CREATE TABLE `users` (`id` int NOT NULL AUTO_INCREMENT, `name` varchar(50), " +
				"PRIMARY KEY (`id`), KEY `idx_name` (`name`))",
			"orders":     "CREATE TABLE `orders` (`id` bigint NOT NULL, `total` decimal(10,2), PRIMARY KEY (`id`))",
			"tmp_import": "CREATE TABLE `tmp_import` (`line` text)",
			"broken":     "CREATE TABLE `broken`",
		},
	}
}

func TestDiscover(t *testing.T) {
	d := &Discoverer{Source: mockSource()}
	s, err := d.Discover(context.Background(), "db.local", "shop")
	require.NoError(t, err)

	assert.Equal(t, "db.local", s.Host)
	assert.Equal(t, "shop", s.Database)
	require.Len(t, s.Tables, 4)

	users := s.Find("users")
	require.NotNil(t, users)
	assert.Equal(t, "partial", users.Status, "index clause produces a warning")
	assert.Equal(t, int64(10), users.RowCount)
	assert.Equal(t, []string{"id", "name"}, users.Definition.ColumnNames())

	orders := s.Find("orders")
	require.NotNil(t, orders)
	assert.Equal(t, "ok", orders.Status)
	assert.Equal(t, "REAL", orders.Definition.Column("total").TargetType)

	broken := s.Find("broken")
	require.NotNil(t, broken)
	assert.Equal(t, "failed", broken.Status)
	assert.NotEmpty(t, broken.Warnings)
}

func TestDiscover_Selection(t *testing.T) {
	d := &Discoverer{Source: mockSource(), Exclude: []string{"tmp_*", "broken"}}
	s, err := d.Discover(context.Background(), "h", "db")
	require.NoError(t, err)

	var names []string
	for _, tb := range s.Tables {
		names = append(names, tb.Name)
	}
	assert.Equal(t, []string{"users", "orders"}, names)
}

func TestDiscover_ShowCreateError(t *testing.T) {
	src := mockSource()
	src.CreateErr = errors.New("permission denied")
	s, err := (&Discoverer{Source: src, Include: []string{"users"}}).Discover(context.Background(), "h", "db")
	require.NoError(t, err)
	require.Len(t, s.Tables, 1)
	assert.Equal(t, "failed", s.Tables[0].Status)
	assert.Contains(t, s.Tables[0].Warnings[0], "permission denied")
}

func TestDiscover_ListError(t *testing.T) {
	src := mockSource()
	src.ListErr = errors.New("connection refused")
	_, err := (&Discoverer{Source: src}).Discover(context.Background(), "h", "db")
	assert.Error(t, err)
}
