package crunchbase

import (
	"strconv"
	"strings"

	"github.com/bayoss/landscape2/internal/landscape"
)

type organizationResponse struct {
	Properties properties `json:"properties"`
}

type valueField struct {
	Value string `json:"value"`
}

type moneyField struct {
	ValueUSD *int64 `json:"value_usd"`
}

type location struct {
	LocationType string `json:"location_type"`
	Value        string `json:"value"`
}

type properties struct {
	Name                string       `json:"name"`
	ShortDescription    string       `json:"short_description"`
	WebsiteURL          *valueField  `json:"website_url"`
	LocationIdentifiers []location   `json:"location_identifiers"`
	CompanyType         string       `json:"company_type"`
	Linkedin            *valueField  `json:"linkedin"`
	Twitter             *valueField  `json:"twitter"`
	NumEmployeesEnum    string       `json:"num_employees_enum"`
	StockExchangeSymbol string       `json:"stock_exchange_symbol"`
	StockSymbol         *valueField  `json:"stock_symbol"`
	FundingTotal        *moneyField  `json:"funding_total"`
	Categories          []valueField `json:"categories"`
}

func (p properties) toData() *landscape.CrunchbaseData {
	d := &landscape.CrunchbaseData{
		Name:          p.Name,
		Description:   p.ShortDescription,
		Kind:          p.CompanyType,
		StockExchange: p.StockExchangeSymbol,
	}
	if p.WebsiteURL != nil {
		d.HomepageURL = p.WebsiteURL.Value
	}
	if p.Linkedin != nil {
		d.LinkedinURL = p.Linkedin.Value
	}
	if p.Twitter != nil {
		d.TwitterURL = p.Twitter.Value
	}
	if p.StockSymbol != nil {
		d.Ticker = p.StockSymbol.Value
	}
	if p.FundingTotal != nil {
		d.Funding = p.FundingTotal.ValueUSD
	}
	for _, loc := range p.LocationIdentifiers {
		switch loc.LocationType {
		case "city":
			d.City = loc.Value
		case "region":
			d.Region = loc.Value
		case "country":
			d.Country = loc.Value
		}
	}
	for _, c := range p.Categories {
		d.Categories = append(d.Categories, c.Value)
	}
	d.NumEmployeesMin, d.NumEmployeesMax = employeesRange(p.NumEmployeesEnum)
	return d
}

// employeesRange decodes enums such as "c_00101_00250" and "c_10001_max".
func employeesRange(enum string) (lo, hi *int64) {
	parts := strings.Split(enum, "_")
	if len(parts) != 3 || parts[0] != "c" {
		return nil, nil
	}
	if v, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
		lo = &v
	}
	if v, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
		hi = &v
	}
	return lo, hi
}
