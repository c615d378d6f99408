package landscape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

func intPtr(v int) *int { return &v }

func TestAddFeaturedItemsData(t *testing.T) {
	d, err := ParseData([]byte(sampleData))
	require.NoError(t, err)

	s := &Settings{FeaturedItems: []FeaturedItemRule{
		{Field: FeaturedFieldProject, Options: []FeaturedItemRuleOption{
			{Value: "graduated", Order: intPtr(1), Label: "CNCF Graduated"},
			{Value: "incubating", Order: intPtr(2)},
		}},
	}}
	require.NoError(t, d.AddFeaturedItemsData(s))

	require.NotNil(t, d.Items[0].Featured)
	assert.Equal(t, 1, *d.Items[0].Featured.Order)
	assert.Equal(t, "CNCF Graduated", d.Items[0].Featured.Label)
	require.NotNil(t, d.Items[1].Featured)
	assert.Equal(t, 2, *d.Items[1].Featured.Order)
	assert.Nil(t, d.Items[2].Featured)
}

func TestAddFeaturedItemsDataInvalidField(t *testing.T) {
	d, err := ParseData([]byte(sampleData))
	require.NoError(t, err)

	err = d.AddFeaturedItemsData(&Settings{FeaturedItems: []FeaturedItemRule{{Field: "stars"}}})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestAddMemberSubcategory(t *testing.T) {
	d, err := ParseData([]byte(sampleData))
	require.NoError(t, err)

	require.NoError(t, d.AddMemberSubcategory("Members"))

	byName := map[string]Item{}
	for _, it := range d.Items {
		byName[it.Name] = it
	}
	assert.Equal(t, "Platinum", byName["TiKV"].MemberSubcategory, "matched through crunchbase URL")
	assert.Equal(t, "Platinum", byName["PingCAP"].MemberSubcategory)
	assert.Equal(t, "Silver", byName["Acme"].MemberSubcategory)
	assert.Empty(t, byName["Vitess"].MemberSubcategory)
	assert.Empty(t, byName["Strimzi"].MemberSubcategory)
}

func TestAddMemberSubcategoryUnknownCategory(t *testing.T) {
	d, err := ParseData([]byte(sampleData))
	require.NoError(t, err)

	err = d.AddMemberSubcategory("Sponsors")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `members category "Sponsors" not found`)

	assert.NoError(t, d.AddMemberSubcategory(""))
}

func TestParseSettingsValidation(t *testing.T) {
	s, err := ParseSettings([]byte(`
foundation: CNCF
url: https://landscape.cncf.io
description: "**Cloud native** landscape"
members_category: Members
featured_items:
  - field: project
    options:
      - value: graduated
        order: 1
colors:
  color1: "#000"
`))
	require.NoError(t, err)
	assert.Equal(t, "Members", s.MembersCategory)
	require.Len(t, s.FeaturedItems, 1)
	assert.Equal(t, 1, *s.FeaturedItems[0].Options[0].Order)
	assert.Equal(t, "#000", s.Colors.Color1)

	_, err = ParseSettings([]byte("url: https://x.io\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foundation is required")

	_, err = ParseSettings([]byte("foundation: X\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")
}
