package landscape

import (
	"fmt"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// AddFeaturedItemsData marks items featured according to the settings rules.
// A rule on an unknown field is a validation error.
func (d *Data) AddFeaturedItemsData(s *Settings) error {
	if s == nil {
		return nil
	}
	for _, rule := range s.FeaturedItems {
		value, err := featuredFieldGetter(rule.Field)
		if err != nil {
			return err
		}
		options := make(map[string]FeaturedItemRuleOption, len(rule.Options))
		for _, opt := range rule.Options {
			options[opt.Value] = opt
		}
		for i := range d.Items {
			item := &d.Items[i]
			opt, ok := options[value(item)]
			if !ok {
				continue
			}
			item.Featured = &Featured{Order: opt.Order, Label: opt.Label}
		}
	}
	return nil
}

func featuredFieldGetter(field string) (func(*Item) string, error) {
	switch field {
	case FeaturedFieldProject:
		return func(i *Item) string { return i.Project }, nil
	case FeaturedFieldSubcategory:
		return func(i *Item) string { return i.Subcategory }, nil
	case FeaturedFieldCategory:
		return func(i *Item) string { return i.Category }, nil
	default:
		return nil, errors.ValidationError(fmt.Sprintf("invalid featured items field %q", field)).
			WithContext("field", field).
			Build()
	}
}

// AddMemberSubcategory assigns the members category subcategory to every item
// whose Crunchbase URL matches a member. Items of the members category get
// their own subcategory. An empty membersCategory is a no-op; one that names a
// missing category is a validation error.
func (d *Data) AddMemberSubcategory(membersCategory string) error {
	if membersCategory == "" {
		return nil
	}
	if _, ok := d.Category(membersCategory); !ok {
		return errors.ValidationError(fmt.Sprintf("members category %q not found", membersCategory)).
			WithContext("category", membersCategory).
			Build()
	}

	members := make(map[string]string)
	for i := range d.Items {
		item := &d.Items[i]
		if item.Category != membersCategory {
			continue
		}
		item.MemberSubcategory = item.Subcategory
		if item.CrunchbaseURL != "" {
			members[item.CrunchbaseURL] = item.Subcategory
		}
	}
	for i := range d.Items {
		item := &d.Items[i]
		if item.Category == membersCategory || item.CrunchbaseURL == "" {
			continue
		}
		if sub, ok := members[item.CrunchbaseURL]; ok {
			item.MemberSubcategory = sub
		}
	}
	return nil
}
