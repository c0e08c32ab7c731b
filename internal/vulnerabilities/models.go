package vulnerabilities

// CloudInfo locates an asset within a cloud provider.
type CloudInfo struct {
	AccountID    string `json:"accountId,omitempty"`
	AccountName  string `json:"accountName,omitempty"`
	ProviderName string `json:"providerName,omitempty"`
	Region       string `json:"region,omitempty"`
	ResourceID   string `json:"resourceId,omitempty"`
	ResourceLink string `json:"resourceLink,omitempty"`
}

// KubernetesInfo locates an asset within a cluster.
type KubernetesInfo struct {
	Cluster   string `json:"cluster,omitempty"`
	ClusterID string `json:"clusterId,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// Asset is the resource a vulnerability was found on.
type Asset struct {
	ID             string          `json:"id"`
	ExternalID     string          `json:"externalId,omitempty"`
	Name           string          `json:"name,omitempty"`
	Type           string          `json:"type,omitempty"`
	Category       string          `json:"category,omitempty"`
	Subcategory    string          `json:"subcategory,omitempty"`
	Privileged     *bool           `json:"privileged,omitempty"`
	CloudInfo      *CloudInfo      `json:"cloudInfo,omitempty"`
	KubernetesInfo *KubernetesInfo `json:"kubernetesInfo,omitempty"`
}

// ScopeRef names one level of the account/site/group hierarchy.
type ScopeRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Scope places a vulnerability in the management hierarchy.
type Scope struct {
	Account *ScopeRef `json:"account,omitempty"`
	Site    *ScopeRef `json:"site,omitempty"`
	Group   *ScopeRef `json:"group,omitempty"`
}

// CVE carries the scoring and exploitability data for a vulnerability.
type CVE struct {
	ID                  string   `json:"id"`
	Description         string   `json:"description,omitempty"`
	NvdBaseScore        *float64 `json:"nvdBaseScore,omitempty"`
	RiskScore           *float64 `json:"riskScore,omitempty"`
	PublishedDate       string   `json:"publishedDate,omitempty"`
	EpssScore           *float64 `json:"epssScore,omitempty"`
	ExploitMaturity     string   `json:"exploitMaturity,omitempty"`
	ExploitedInTheWild  *bool    `json:"exploitedInTheWild,omitempty"`
	KevAvailable        *bool    `json:"kevAvailable,omitempty"`
	MitreReferenceURL   string   `json:"mitreReferenceUrl,omitempty"`
	NvdReferenceURL     string   `json:"nvdReferenceUrl,omitempty"`
}

// Software identifies the vulnerable package.
type Software struct {
	Name       string `json:"name,omitempty"`
	Version    string `json:"version,omitempty"`
	FixVersion string `json:"fixVersion,omitempty"`
	Type       string `json:"type,omitempty"`
	Vendor     string `json:"vendor,omitempty"`
}

// Assignee is the user a vulnerability is assigned to.
type Assignee struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Deleted  *bool  `json:"deleted,omitempty"`
}

// Vulnerability is the main record. Everything except ID is optional so
// custom field selections decode cleanly.
type Vulnerability struct {
	ID                string    `json:"id"`
	ExternalID        string    `json:"externalId,omitempty"`
	Name              string    `json:"name,omitempty"`
	Severity          string    `json:"severity,omitempty"`
	Status            string    `json:"status,omitempty"`
	DetectedAt        string    `json:"detectedAt,omitempty"`
	LastSeenAt        string    `json:"lastSeenAt,omitempty"`
	UpdatedAt         string    `json:"updatedAt,omitempty"`
	Product           string    `json:"product,omitempty"`
	Vendor            string    `json:"vendor,omitempty"`
	Asset             *Asset    `json:"asset,omitempty"`
	Scope             *Scope    `json:"scope,omitempty"`
	CVE               *CVE      `json:"cve,omitempty"`
	Software          *Software `json:"software,omitempty"`
	AnalystVerdict    string    `json:"analystVerdict,omitempty"`
	Assignee          *Assignee `json:"assignee,omitempty"`
	ExclusionPolicyID string    `json:"exclusionPolicyId,omitempty"`
	SelfLink          string    `json:"selfLink,omitempty"`
}

// Note is an analyst comment attached to a vulnerability.
type Note struct {
	ID              string    `json:"id"`
	VulnerabilityID string    `json:"vulnerabilityId,omitempty"`
	Text            string    `json:"text"`
	Author          *Assignee `json:"author,omitempty"`
	CreatedAt       string    `json:"createdAt,omitempty"`
	UpdatedAt       string    `json:"updatedAt,omitempty"`
}

// HistoryEvent is one entry in a vulnerability's audit trail.
type HistoryEvent struct {
	EventType string `json:"eventType"`
	EventText string `json:"eventText"`
	CreatedAt string `json:"createdAt"`
}
