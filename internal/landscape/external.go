package landscape

import "time"

// CrunchbaseData is the organization information collected from Crunchbase.
type CrunchbaseData struct {
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	HomepageURL     string   `json:"homepage_url,omitempty"`
	City            string   `json:"city,omitempty"`
	Region          string   `json:"region,omitempty"`
	Country         string   `json:"country,omitempty"`
	Kind            string   `json:"kind,omitempty"`
	LinkedinURL     string   `json:"linkedin_url,omitempty"`
	TwitterURL      string   `json:"twitter_url,omitempty"`
	NumEmployeesMin *int64   `json:"num_employees_min,omitempty"`
	NumEmployeesMax *int64   `json:"num_employees_max,omitempty"`
	StockExchange   string   `json:"stock_exchange,omitempty"`
	Ticker          string   `json:"ticker,omitempty"`
	Funding         *int64   `json:"funding,omitempty"`
	Categories      []string `json:"categories,omitempty"`
}

// GithubData is the repository information collected from GitHub.
type GithubData struct {
	URL           string           `json:"url"`
	Description   string           `json:"description,omitempty"`
	Homepage      string           `json:"homepage_url,omitempty"`
	Stars         int64            `json:"stars"`
	Forks         int64            `json:"forks"`
	License       string           `json:"license,omitempty"`
	Topics        []string         `json:"topics,omitempty"`
	Languages     map[string]int64 `json:"languages,omitempty"`
	DefaultBranch string           `json:"default_branch,omitempty"`
	Archived      bool             `json:"archived,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	PushedAt      time.Time        `json:"pushed_at"`
}

// CrunchbaseURLs returns the distinct Crunchbase URLs in item order.
func (d *Data) CrunchbaseURLs() []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, item := range d.Items {
		if item.CrunchbaseURL == "" {
			continue
		}
		if _, ok := seen[item.CrunchbaseURL]; ok {
			continue
		}
		seen[item.CrunchbaseURL] = struct{}{}
		urls = append(urls, item.CrunchbaseURL)
	}
	return urls
}

// RepositoryURLs returns the distinct repository URLs in item order.
func (d *Data) RepositoryURLs() []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, item := range d.Items {
		for _, r := range item.Repositories {
			if _, ok := seen[r.URL]; ok {
				continue
			}
			seen[r.URL] = struct{}{}
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// AddCrunchbaseData attaches collected organization data, keyed by Crunchbase URL.
func (d *Data) AddCrunchbaseData(data map[string]*CrunchbaseData) {
	for i := range d.Items {
		item := &d.Items[i]
		if org, ok := data[item.CrunchbaseURL]; ok && item.CrunchbaseURL != "" {
			item.CrunchbaseData = org
		}
	}
}

// AddGithubData attaches collected repository data, keyed by repository URL.
func (d *Data) AddGithubData(data map[string]*GithubData) {
	for i := range d.Items {
		for j := range d.Items[i].Repositories {
			repo := &d.Items[i].Repositories[j]
			if gh, ok := data[repo.URL]; ok {
				repo.GithubData = gh
			}
		}
	}
}
