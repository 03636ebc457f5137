package dbstorage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewyi/omnicrawler/src/dbstorage/schema"
	"github.com/andrewyi/omnicrawler/src/entity"
	"github.com/andrewyi/omnicrawler/src/enum"
)

func TestFillPage(t *testing.T) {
	page := &schema.Page{RunID: "run", Ref: "/wiki/2049/09/28/Article"}
	err := fillPage(page, entity.PageRecord{
		Ref:        "/wiki/2049/09/28/Article",
		State:      enum.PageStateSuccess,
		Links:      []entity.PageRef{"/wiki/2049/09/28/Tony"},
		Revisions:  []entity.PageRef{"/wiki/2049/09/27/Article"},
		HoverCount: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "2049/09/28", page.Date)
	assert.Equal(t, uint8(enum.PageStateSuccess), page.State)
	assert.Equal(t, 2, page.HoverCount)
	assert.False(t, page.FetchedAt.IsZero())

	var links []string
	require.NoError(t, json.Unmarshal([]byte(page.Links), &links))
	assert.Equal(t, []string{"/wiki/2049/09/28/Tony"}, links)
}

func TestFillPageFailure(t *testing.T) {
	page := &schema.Page{}
	require.NoError(t, fillPage(page, entity.PageRecord{
		Ref:    "/wiki/2049/09/28/Broken",
		State:  enum.PageStateFail,
		Remark: "fetch /wiki/2049/09/28/Broken: status 500",
	}))
	assert.Equal(t, uint8(enum.PageStateFail), page.State)
	assert.Equal(t, "null", page.Links)
	assert.True(t, page.FetchedAt.IsZero())
	assert.Contains(t, page.Remark, "status 500")
}
