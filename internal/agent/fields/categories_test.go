package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogMatchKeywords(t *testing.T) {
	c := NewCatalog()

	name, hits := c.MatchKeywords("we play chess and board games")
	assert.Equal(t, "Games", name)
	assert.Equal(t, 2, hits)

	name, hits = c.MatchKeywords("футбол и баскетбол")
	assert.Equal(t, "Sports", name)
	assert.Equal(t, 2, hits)

	name, hits = c.MatchKeywords("something unrelated")
	assert.Empty(t, name)
	assert.Zero(t, hits)
}

func TestCatalogCustomList(t *testing.T) {
	c := NewCatalog(Category{Name: "Robotics", Keywords: []string{"arduino"}})
	assert.Equal(t, []string{"Robotics"}, c.Names())

	got, ok := c.Match("robot")
	assert.True(t, ok)
	assert.Equal(t, "Robotics", got)
}
