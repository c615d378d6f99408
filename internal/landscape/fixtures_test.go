package landscape

const sampleData = `
landscape:
  - name: App Definition
    subcategories:
      - name: Database
        items:
          - name: Vitess
            homepage_url: https://vitess.io
            logo: vitess.svg
            repo_url: https://github.com/vitessio/vitess
            additional_repos:
              - repo_url: https://github.com/vitessio/website
            crunchbase: https://www.crunchbase.com/organization/cncf
            project: graduated
          - name: TiKV
            homepage_url: https://tikv.org
            logo: tikv.svg
            repo_url: https://github.com/tikv/tikv
            crunchbase: https://www.crunchbase.com/organization/pingcap
            project: incubating
      - name: Streaming
        items:
          - name: Strimzi
            homepage_url: https://strimzi.io
            logo: strimzi.svg
            project: sandbox
  - name: Members
    subcategories:
      - name: Platinum
        items:
          - name: PingCAP
            homepage_url: https://pingcap.com
            logo: pingcap.svg
            crunchbase: https://www.crunchbase.com/organization/pingcap
      - name: Silver
        items:
          - name: Acme
            homepage_url: https://acme.io
            logo: acme.svg
            crunchbase: https://www.crunchbase.com/organization/acme
`
