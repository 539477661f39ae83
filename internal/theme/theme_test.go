package theme

import (
	"testing"

	"github.com/chmouel/hgstat/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGetTheme(t *testing.T) {
	for _, name := range AvailableThemes() {
		assert.True(t, IsKnown(name))
		assert.NotNil(t, GetTheme(name), name)
	}
	assert.Equal(t, Dracula(), GetTheme("does-not-exist"))
	assert.False(t, IsKnown("does-not-exist"))
}

func TestAvailableThemesSorted(t *testing.T) {
	assert.Equal(t, []string{DraculaName, GruvboxDarkName, NordName, SolarizedLightName}, AvailableThemes())
}

func TestStatusColor(t *testing.T) {
	th := Nord()
	assert.Equal(t, th.Modified, th.StatusColor(models.StatusModified))
	assert.Equal(t, th.Added, th.StatusColor(models.StatusAdded))
	assert.Equal(t, th.Directory, th.StatusColor(models.StatusDirectory))
	assert.Equal(t, th.NotTracked, th.StatusColor(models.StatusNotTracked))
	assert.Equal(t, th.NotTracked, th.StatusColor(models.StatusCode(99)))
}
