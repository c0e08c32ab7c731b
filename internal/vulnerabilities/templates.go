package vulnerabilities

import (
	"github.com/sentinelmcp/sentinelmcp/internal/filter"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
)

// FieldCatalog drives field selection for vulnerability queries.
var FieldCatalog = graphql.FieldCatalog{
	DefaultFields: []string{
		"id",
		"name",
		"severity",
		"status",
		"detectedAt",
		"lastSeenAt",
		"product",
		"vendor",
		"asset { id externalId name type category subcategory privileged cloudInfo { accountId accountName providerName region } kubernetesInfo { cluster namespace } }",
		"scope { account { id name } site { id name } group { id name } }",
		"cve { id nvdBaseScore riskScore publishedDate epssScore exploitMaturity exploitedInTheWild }",
		"software { name version fixVersion type vendor }",
		"analystVerdict",
		"assignee { id email fullName }",
		"exclusionPolicyId",
	},
	Description: "Vulnerability field configuration for the exposure management GraphQL API",
}

// FilterFields maps each filterable vulnerability field to the filter
// types the backend accepts for it. This API takes no integer filters;
// score fields filter as string ranges. cveNvdBaseScore and cveRiskScore
// are sort-only and therefore carry an empty list.
var FilterFields = filter.FieldTable{
	"id":                           {"string_equals", "string_in", "fulltext"},
	"name":                         {"string_equals", "string_in", "fulltext"},
	"severity":                     {"string_equals", "string_in"},
	"status":                       {"string_equals", "string_in"},
	"detectedAt":                   {"datetime_range"},
	"lastSeenAt":                   {"datetime_range"},
	"product":                      {"string_equals", "string_in"},
	"vendor":                       {"string_equals", "string_in"},
	"analystVerdict":               {"string_equals", "string_in"},
	"assigneeFullName":             {"string_equals", "string_in", "fulltext"},
	"cveId":                        {"string_equals", "string_in", "fulltext"},
	"cveNvdBaseScore":              {},
	"cveRiskScore":                 {},
	"cveEpssScore":                 {"string_in"},
	"cveExploitMaturity":           {"string_equals", "string_in"},
	"cveExploitedInTheWild":        {"boolean_equals", "boolean_in"},
	"cveKevAvailable":              {"boolean_equals", "boolean_in"},
	"cveReportConfidence":          {"string_equals", "string_in"},
	"softwareName":                 {"string_equals", "string_in", "fulltext"},
	"softwareVersion":              {"string_equals", "string_in"},
	"softwareFixVersion":           {"string_equals", "string_in"},
	"softwareFixVersionAvailable":  {"boolean_equals", "boolean_in"},
	"softwareType":                 {"string_equals", "string_in"},
	"softwareVendor":               {"string_equals", "string_in"},
	"assetId":                      {"string_equals", "string_in"},
	"assetName":                    {"string_equals", "string_in", "fulltext"},
	"assetType":                    {"string_equals", "string_in"},
	"assetTypeCategory":            {"string_equals", "string_in"},
	"assetCategory":                {"string_equals", "string_in"},
	"assetSubcategory":             {"string_equals", "string_in"},
	"assetCriticality":             {"string_equals", "string_in"},
	"assetPrivileged":              {"boolean_equals", "boolean_in"},
	"assetCloudResourceId":         {"string_equals", "string_in"},
	"assetCloudAccountId":          {"string_equals", "string_in"},
	"assetCloudAccount":            {"string_equals", "string_in"},
	"assetCloudRegion":             {"string_equals", "string_in"},
	"assetKubernetesCluster":       {"string_equals", "string_in"},
	"assetKubernetesClusterId":     {"string_equals", "string_in"},
	"remediationInsightsAvailable": {"boolean_equals", "boolean_in"},
	"accountId":                    {"string_equals", "string_in"},
	"siteId":                       {"string_equals", "string_in"},
	"groupId":                      {"string_equals", "string_in"},
}

const getVulnerabilityQuery = `
query GetVulnerability($id: ID!) {
    vulnerability(id: $id) {
        id
        externalId
        name
        severity
        status
        detectedAt
        lastSeenAt
        updatedAt
        product
        vendor
        asset {
            id
            externalId
            name
            type
            category
            subcategory
            privileged
            cloudInfo {
                accountId
                accountName
                providerName
                region
                resourceId
                resourceLink
            }
            kubernetesInfo {
                cluster
                clusterId
                namespace
            }
        }
        scope {
            account {
                id
                name
            }
            site {
                id
                name
            }
            group {
                id
                name
            }
        }
        cve {
            id
            description
            nvdBaseScore
            riskScore
            publishedDate
            epssScore
            exploitMaturity
            exploitedInTheWild
            kevAvailable
            mitreReferenceUrl
            nvdReferenceUrl
        }
        software {
            name
            version
            fixVersion
            type
            vendor
        }
        selfLink
        analystVerdict
        assignee {
            id
            email
            fullName
            deleted
        }
        exclusionPolicyId
    }
}
`

const listVulnerabilitiesQuery = `
query ListVulnerabilities($first: Int!, $after: String) {
    vulnerabilities(first: $first, after: $after) {
        edges {
            node {
${node_fields}
            }
            cursor
        }
        pageInfo {
            hasNextPage
            hasPreviousPage
            startCursor
            endCursor
        }
        totalCount
    }
}
`

const searchVulnerabilitiesQuery = `
query SearchVulnerabilities($filters: [FilterInput!], $first: Int!, $after: String) {
    vulnerabilities(filters: $filters, first: $first, after: $after) {
        edges {
            node {
${node_fields}
            }
            cursor
        }
        pageInfo {
            hasNextPage
            hasPreviousPage
            startCursor
            endCursor
        }
        totalCount
    }
}
`

const getVulnerabilityNotesQuery = `
query GetVulnerabilityNotes($vulnerabilityId: ID!, $first: Int, $after: String) {
    vulnerabilityNotes(vulnerabilityId: $vulnerabilityId, first: $first, after: $after) {
        edges {
            node {
                id
                vulnerabilityId
                text
                author {
                    id
                    email
                    fullName
                    deleted
                }
                createdAt
                updatedAt
            }
            cursor
        }
        pageInfo {
            hasNextPage
            hasPreviousPage
            startCursor
            endCursor
        }
        totalCount
    }
}
`

const getVulnerabilityHistoryQuery = `
query GetVulnerabilityHistory($vulnerabilityId: ID!, $first: Int!, $after: String) {
    vulnerabilityHistory(vulnerabilityId: $vulnerabilityId, first: $first, after: $after) {
        edges {
            node {
                eventType
                eventText
                createdAt
            }
            cursor
        }
        pageInfo {
            hasNextPage
            hasPreviousPage
            startCursor
            endCursor
        }
        totalCount
    }
}
`
