package github

import (
	"time"

	"github.com/bayoss/landscape2/internal/landscape"
)

type license struct {
	SPDXID string `json:"spdx_id"`
	Name   string `json:"name"`
}

type repository struct {
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	Homepage        string    `json:"homepage"`
	StargazersCount int64     `json:"stargazers_count"`
	ForksCount      int64     `json:"forks_count"`
	License         *license  `json:"license"`
	Topics          []string  `json:"topics"`
	DefaultBranch   string    `json:"default_branch"`
	Archived        bool      `json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

func (r repository) toData(u string) *landscape.GithubData {
	d := &landscape.GithubData{
		URL:           u,
		Description:   r.Description,
		Homepage:      r.Homepage,
		Stars:         r.StargazersCount,
		Forks:         r.ForksCount,
		Topics:        r.Topics,
		DefaultBranch: r.DefaultBranch,
		Archived:      r.Archived,
		CreatedAt:     r.CreatedAt,
		PushedAt:      r.PushedAt,
	}
	if r.License != nil {
		d.License = r.License.SPDXID
		if d.License == "" || d.License == "NOASSERTION" {
			d.License = r.License.Name
		}
	}
	return d
}
