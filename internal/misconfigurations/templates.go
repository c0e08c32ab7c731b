package misconfigurations

import (
	"github.com/sentinelmcp/sentinelmcp/internal/filter"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
)

// FieldCatalog drives field selection for misconfiguration queries.
var FieldCatalog = graphql.FieldCatalog{
	DefaultFields: []string{
		"id",
		"externalId",
		"name",
		"severity",
		"status",
		"detectedAt",
		"eventTime",
		"lastSeenAt",
		"environment",
		"product",
		"vendor",
		"asset { id externalId name type category subcategory privileged cloudInfo { accountId accountName providerName region } kubernetesInfo { cluster namespace } }",
		"scope { account { id name } site { id name } group { id name } }",
		"analystVerdict",
		"assignee { id email fullName }",
		"cnapp { policy { id version group } verifiedExploitable }",
		"complianceStandards",
		"dataClassificationCategories",
		"dataClassificationDataTypes",
		"enforcementAction",
		"evidence { fileName fileType iacFramework ipAddress port subdomain }",
		"exclusionPolicyId",
		"exploitId",
		"exposureReason",
		"findingType",
		"mitigable",
		"misconfigurationType",
		"mitreAttacks { techniqueId techniqueName techniqueUrl tacticName tacticUid }",
		"organization",
		"remediation { mitigable mitigationSteps }",
		"resourceUid",
		"admissionRequest { category resourceName resourceNamespace resourceType userName userUid userGroup }",
	},
	Description: "Misconfiguration field configuration for the exposure management GraphQL API",
}

// FilterFields maps each filterable misconfiguration field to the filter
// types the backend accepts for it.
var FilterFields = filter.FieldTable{
	"id":                   {"string_equals", "string_in", "fulltext"},
	"name":                 {"string_equals", "string_in", "fulltext"},
	"severity":             {"string_equals", "string_in"},
	"status":               {"string_equals", "string_in"},
	"detectedAt":           {"datetime_range"},
	"lastSeenAt":           {"datetime_range"},
	"environment":          {"string_equals", "string_in"},
	"product":              {"string_equals", "string_in"},
	"vendor":               {"string_equals", "string_in"},
	"organization":         {"string_equals", "string_in"},
	"analystVerdict":       {"string_equals", "string_in"},
	"assigneeFullName":     {"string_equals", "string_in", "fulltext"},
	"exposureReason":       {"string_equals", "string_in"},
	"mitigable":            {"boolean_equals", "boolean_in"},
	"assetId":              {"string_equals", "string_in"},
	"assetName":            {"string_equals", "string_in", "fulltext"},
	"assetType":            {"string_equals", "string_in"},
	"assetTypeCategory":    {"string_equals", "string_in"},
	"assetCategory":        {"string_equals", "string_in"},
	"assetSubcategory":     {"string_equals", "string_in"},
	"assetCriticality":     {"string_equals", "string_in"},
	"assetPrivileged":      {"boolean_equals", "boolean_in"},
	"assetCloudResourceId": {"string_equals", "string_in"},
	"misconfigurationType": {"string_equals", "string_in"},
}

const getMisconfigurationQuery = `
query GetMisconfiguration($id: ID!) {
    misconfiguration(id: $id) {
        id
        externalId
        name
        description
        severity
        status
        detectedAt
        eventTime
        lastSeenAt
        environment
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
        analystVerdict
        assignee {
            id
            email
            fullName
            deleted
        }
        cnapp {
            policy {
                id
                version
                group
            }
            verifiedExploitable
        }
        complianceStandards
        dataClassificationCategories
        dataClassificationDataTypes
        enforcementAction
        evidence {
            fileName
            fileType
            iacFramework
            ipAddress
            port
            subdomain
        }
        exclusionPolicyId
        exploitId
        exposureReason
        findingType
        mitigable
        misconfigurationType
        mitreAttacks {
            techniqueId
            techniqueName
            techniqueUrl
            tacticName
            tacticUid
        }
        organization
        remediation {
            mitigable
            mitigationSteps
        }
        resourceUid
        admissionRequest {
            category
            resourceName
            resourceNamespace
            resourceType
            userName
            userUid
            userGroup
        }
    }
}
`

const listMisconfigurationsQuery = `
query ListMisconfigurations($first: Int!, $after: String${view_type_param}) {
    misconfigurations(first: $first, after: $after${view_type_arg}) {
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

const searchMisconfigurationsQuery = `
query SearchMisconfigurations($filters: [FilterInput!], $first: Int!, $after: String${view_type_param}) {
    misconfigurations(filters: $filters, first: $first, after: $after${view_type_arg}) {
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

const getMisconfigurationNotesQuery = `
query GetMisconfigurationNotes($misconfigurationId: ID!, $first: Int, $after: String) {
    misconfigurationNotes(misconfigurationId: $misconfigurationId, first: $first, after: $after) {
        edges {
            node {
                id
                misconfigurationId
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

const getMisconfigurationHistoryQuery = `
query GetMisconfigurationHistory($misconfigurationId: ID!, $first: Int!, $after: String) {
    misconfigurationHistory(misconfigurationId: $misconfigurationId, first: $first, after: $after) {
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
