package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/codegraph/internal/codegraph/cfg"
)

func TestGraphBlockByIDRoundTrips(t *testing.T) {
	g := &cfg.Graph{Blocks: []cfg.Block{{ID: 0, Kind: cfg.BlockEntry}, {ID: 1, Kind: cfg.BlockExit}}}

	blk, ok := g.BlockByID(1)
	assert.True(t, ok)
	assert.Equal(t, cfg.BlockExit, blk.Kind)
}

func TestGraphBlockByIDOutOfRange(t *testing.T) {
	g := &cfg.Graph{Blocks: []cfg.Block{{ID: 0}}}

	_, ok := g.BlockByID(5)
	assert.False(t, ok)

	_, ok = g.BlockByID(-1)
	assert.False(t, ok)
}
