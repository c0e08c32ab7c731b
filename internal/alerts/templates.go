package alerts

import (
	"github.com/sentinelmcp/sentinelmcp/internal/filter"
	"github.com/sentinelmcp/sentinelmcp/internal/graphql"
)

// FieldCatalog drives field selection for alert queries. dataSources is
// allowed for custom selection but kept out of the defaults: it rides in
// through the ${data_sources_field} template slot so that older backends
// without the field can drop it without touching the node selection.
var FieldCatalog = graphql.FieldCatalog{
	DefaultFields: []string{
		"id",
		"externalId",
		"severity",
		"status",
		"name",
		"description",
		"detectedAt",
		"firstSeenAt",
		"lastSeenAt",
		"analystVerdict",
		"classification",
		"confidenceLevel",
		"detectionSource { product vendor }",
		"asset { id name type }",
		"assignee { userId email fullName }",
		"noteExists",
		"result",
		"storylineId",
		"ticketId",
	},
	AdditionalAllowedFields: []string{"dataSources"},
	Description:             "Alert field configuration for the unified alerts GraphQL API",
}

// FilterFields maps each filterable alert field to the filter types the
// backend accepts for it. Unknown fields pass through untouched so newer
// backend fields stay reachable without a release.
var FilterFields = filter.FieldTable{
	"id":               {"string_equals", "string_in", "fulltext"},
	"severity":         {"string_equals", "string_in"},
	"status":           {"string_equals", "string_in"},
	"alertName":        {"string_equals", "string_in", "fulltext"},
	"description":      {"fulltext"},
	"analystVerdict":   {"string_equals", "string_in"},
	"classification":   {"string_equals", "string_in"},
	"assigneeUserId":   {"long_equals", "long_in"},
	"assigneeFullName": {"string_equals", "string_in", "fulltext"},
	"alertNoteExists":  {"boolean_equals", "boolean_in"},
	"storylineId":      {"string_equals", "string_in", "fulltext"},
	"detectedAt":       {"datetime_range"},
	"createdAt":        {"datetime_range"},
	"firstSeenAt":      {"datetime_range"},
	"lastSeenAt":       {"datetime_range"},
}

const getAlertQuery = `
query GetAlert($alertId: ID!) {
    alert(id: $alertId) {
        id
        externalId
        severity
        status
        name
        description
        detectedAt
        firstSeenAt
        lastSeenAt
        analystVerdict
        classification
        confidenceLevel
        ${data_sources_field}
        detectionSource {
            product
            vendor
        }
        asset {
            id
            name
            type
        }
        assignee {
            userId
            email
            fullName
        }
        noteExists
        result
        storylineId
        ticketId
    }
}
`

const listAlertsQuery = `
query ListAlerts($first: Int!, $after: String${view_type_param}) {
    alerts(first: $first, after: $after${view_type_arg}) {
        edges {
            node {
${node_fields}
                ${data_sources_field}
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

const searchAlertsQuery = `
query SearchAlerts($filters: [FilterInput!], $first: Int!, $after: String${view_type_param}) {
    alerts(filters: $filters, first: $first, after: $after${view_type_arg}) {
        edges {
            node {
${node_fields}
                ${data_sources_field}
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

const getAlertNotesQuery = `
query GetAlertNotes($alertId: ID!) {
    alertNotes(alertId: $alertId) {
        data {
            id
            text
            createdAt
            author {
                userId
                email
            }
            alertId
        }
    }
}
`

const getAlertHistoryQuery = `
query GetAlertHistory($alertId: ID!, $first: Int!, $after: String) {
    alertHistory(alertId: $alertId, first: $first, after: $after) {
        edges {
            node {
                createdAt
                eventText
                eventType
                reportUrl
                historyItemCreator {
                    __typename
                    ... on UserHistoryItemCreator {
                        userId
                        userType
                    }
                }
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
