package inventory

import (
	"fmt"
	"strings"
)

// Surface partitions the asset inventory by origin.
type Surface string

const (
	SurfaceEndpoint         Surface = "ENDPOINT"
	SurfaceCloud            Surface = "CLOUD"
	SurfaceIdentity         Surface = "IDENTITY"
	SurfaceNetworkDiscovery Surface = "NETWORK_DISCOVERY"
)

// Surfaces lists every valid surface in a stable order.
var Surfaces = []Surface{SurfaceEndpoint, SurfaceCloud, SurfaceIdentity, SurfaceNetworkDiscovery}

// ParseSurface validates a caller-supplied surface name. Empty input means
// no surface filter and yields "".
func ParseSurface(s string) (Surface, error) {
	if s == "" {
		return "", nil
	}
	for _, surface := range Surfaces {
		if Surface(s) == surface {
			return surface, nil
		}
	}
	names := make([]string, len(Surfaces))
	for i, surface := range Surfaces {
		names[i] = string(surface)
	}
	return "", fmt.Errorf("invalid surface '%s', must be one of: %s", s, strings.Join(names, ", "))
}

// Note is an analyst note attached to an inventory item.
type Note struct {
	ID         string `json:"id,omitempty"`
	Note       string `json:"note,omitempty"`
	ResourceID string `json:"resourceId,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
	UserID     string `json:"userId,omitempty"`
	UserName   string `json:"userName,omitempty"`
}

// Tag is a key/value label on an asset. Values arrive as strings or
// booleans depending on the source, so both sides stay loose.
type Tag map[string]any

// NetworkInterface describes one NIC on a compute device.
type NetworkInterface struct {
	Name        string `json:"name,omitempty"`
	IP          string `json:"ip,omitempty"`
	MAC         string `json:"mac,omitempty"`
	GatewayIP   string `json:"gatewayIp,omitempty"`
	GatewayMAC  string `json:"gatewayMac,omitempty"`
	NetworkName string `json:"networkName,omitempty"`
	Subnet      string `json:"subnet,omitempty"`
}

// DeviceReviewLog records one device review state transition.
type DeviceReviewLog struct {
	Current       string `json:"current,omitempty"`
	Previous      string `json:"previous,omitempty"`
	Reason        string `json:"reason,omitempty"`
	ReasonDetails string `json:"reasonDetails,omitempty"`
	UpdatedTime   *int64 `json:"updatedTime,omitempty"`
	UpdatedTimeDt string `json:"updatedTimeDt,omitempty"`
	Username      string `json:"username,omitempty"`
}

// Item is one unified asset inventory record. The REST schema merges
// fields from every resource family, so everything is optional and
// populated per resource type.
type Item struct {
	// Common
	ID          string   `json:"id,omitempty"`
	IDSecondary []string `json:"idSecondary,omitempty"`
	Name        string   `json:"name,omitempty"`
	Tags        []Tag    `json:"tags,omitempty"`

	// Asset
	ActiveCoverage    []string          `json:"activeCoverage,omitempty"`
	AssetContactEmail string            `json:"assetContactEmail,omitempty"`
	AssetCriticality  string            `json:"assetCriticality,omitempty"`
	AssetEnvironment  string            `json:"assetEnvironment,omitempty"`
	AssetStatus       string            `json:"assetStatus,omitempty"`
	Category          string            `json:"category,omitempty"`
	SubCategory       string            `json:"subCategory,omitempty"`
	DeviceReview      string            `json:"deviceReview,omitempty"`
	DeviceReviewLog   []DeviceReviewLog `json:"deviceReviewLog,omitempty"`
	MissingCoverage   []string          `json:"missingCoverage,omitempty"`
	Notes             []Note            `json:"notes,omitempty"`
	ResourceType      string            `json:"resourceType,omitempty"`
	RiskFactors       []string          `json:"riskFactors,omitempty"`
	Surfaces          []string          `json:"surfaces,omitempty"`
	InfectionStatus   string            `json:"infectionStatus,omitempty"`
	LastActiveDt      string            `json:"lastActiveDt,omitempty"`

	// Cloud
	CloudProviderAccountID   string         `json:"cloudProviderAccountId,omitempty"`
	CloudProviderAccountName string         `json:"cloudProviderAccountName,omitempty"`
	CloudProviderOrg         string         `json:"cloudProviderOrganization,omitempty"`
	CloudProviderProjectID   string         `json:"cloudProviderProjectId,omitempty"`
	CloudProviderResourceGrp string         `json:"cloudProviderResourceGroup,omitempty"`
	CloudProviderSubID       string         `json:"cloudProviderSubscriptionId,omitempty"`
	CloudTags                []Tag          `json:"cloudTags,omitempty"`
	CreatedTime              string         `json:"createdTime,omitempty"`
	Region                   string         `json:"region,omitempty"`
	SourceJSON               map[string]any `json:"sourceJson,omitempty"`
	CloudResourceID          string         `json:"cloudResourceId,omitempty"`
	CloudResourceUID         string         `json:"cloudResourceUid,omitempty"`
	CloudResourceArn         string         `json:"cloudResourceArn,omitempty"`

	// Compute device
	Architecture      string             `json:"architecture,omitempty"`
	CoreCount         *int               `json:"coreCount,omitempty"`
	Domain            string             `json:"domain,omitempty"`
	Hostnames         []string           `json:"hostnames,omitempty"`
	InternalIPs       []string           `json:"internalIps,omitempty"`
	InternalIPsV6     []string           `json:"internalIpsV6,omitempty"`
	IPAddress         string             `json:"ipAddress,omitempty"`
	MACAddresses      []string           `json:"macAddresses,omitempty"`
	Memory            *int64             `json:"memory,omitempty"`
	MemoryReadable    string             `json:"memoryReadable,omitempty"`
	NetworkInterfaces []NetworkInterface `json:"networkInterfaces,omitempty"`
	OS                string             `json:"os,omitempty"`
	OSFamily          string             `json:"osFamily,omitempty"`
	OSVersion         string             `json:"osVersion,omitempty"`
	OSNameVersion     string             `json:"osNameVersion,omitempty"`
	Subnets           []string           `json:"subnets,omitempty"`
	InstanceID        string             `json:"instanceId,omitempty"`
	InstanceType      string             `json:"instanceType,omitempty"`
	ImageID           string             `json:"imageId,omitempty"`

	// EPP endpoint
	Agent         map[string]any `json:"agent,omitempty"`
	Identity      map[string]any `json:"identity,omitempty"`
	CPU           string         `json:"cpu,omitempty"`
	LastRebootDt  string         `json:"lastRebootDt,omitempty"`
	FirstSeenDt   string         `json:"firstSeenDt,omitempty"`
	SerialNumber  string         `json:"serialNumber,omitempty"`
	IsAdConnector *bool          `json:"isAdConnector,omitempty"`
	IsDcServer    *bool          `json:"isDcServer,omitempty"`
	ModelName     string         `json:"modelName,omitempty"`
	OSUsername    string         `json:"osUsername,omitempty"`

	// Network discovery
	DetectedFromSite string   `json:"detectedFromSite,omitempty"`
	DiscoveryMethods []string `json:"discoveryMethods,omitempty"`
	LastUpdateDt     string   `json:"lastUpdateDt,omitempty"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
	NetworkNames     []string `json:"networkNames,omitempty"`
	TCPPorts         []string `json:"tcpPorts,omitempty"`
	UDPPorts         []string `json:"udpPorts,omitempty"`

	// Management scope metadata
	S1AccountID   string `json:"s1AccountId,omitempty"`
	S1AccountName string `json:"s1AccountName,omitempty"`
	S1SiteID      string `json:"s1SiteId,omitempty"`
	S1SiteName    string `json:"s1SiteName,omitempty"`
	S1GroupID     string `json:"s1GroupId,omitempty"`
	S1GroupName   string `json:"s1GroupName,omitempty"`
	S1ScopeID     string `json:"s1ScopeId,omitempty"`
	S1ScopeLevel  string `json:"s1ScopeLevel,omitempty"`
	S1ScopePath   string `json:"s1ScopePath,omitempty"`
	S1UpdatedAt   string `json:"s1UpdatedAt,omitempty"`

	// Kubernetes
	K8sCluster   string `json:"k8sCluster,omitempty"`
	K8sClusterID string `json:"k8sClusterId,omitempty"`
	K8sNamespace string `json:"k8sNamespace,omitempty"`
	K8sNode      string `json:"k8sNode,omitempty"`
	K8sType      string `json:"k8sType,omitempty"`
	K8sVersion   string `json:"k8sVersion,omitempty"`

	// Identity
	DisplayName       string   `json:"displayName,omitempty"`
	DistinguishedName string   `json:"distinguishedName,omitempty"`
	SamAccountName    string   `json:"samAccountName,omitempty"`
	UserPrincipalName string   `json:"userPrincipalName,omitempty"`
	PrincipalName     string   `json:"principalName,omitempty"`
	Mail              string   `json:"mail,omitempty"`
	MemberOf          []string `json:"memberOf,omitempty"`
	ObjectSid         string   `json:"objectSid,omitempty"`
	ObjectGuid        string   `json:"objectGuid,omitempty"`
	Privileged        *bool    `json:"privileged,omitempty"`
	Enabled           *bool    `json:"enabled,omitempty"`
	LastLogonTime     string   `json:"lastLogonTime,omitempty"`
	Department        string   `json:"department,omitempty"`
	JobTitle          string   `json:"jobTitle,omitempty"`
}

// Pagination carries the page bookkeeping the REST API returns alongside
// results.
type Pagination struct {
	TotalCount *int `json:"totalCount,omitempty"`
	Limit      *int `json:"limit,omitempty"`
	Skip       *int `json:"skip,omitempty"`
}

// Response is one page of inventory items.
type Response struct {
	Data       []Item      `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
