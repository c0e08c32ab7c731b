package misconfigurations

import (
	"fmt"
	"strings"
)

// ViewType scopes misconfiguration queries by surface.
type ViewType string

const (
	ViewTypeAll                  ViewType = "ALL"
	ViewTypeCloud                ViewType = "CLOUD"
	ViewTypeKubernetes           ViewType = "KUBERNETES"
	ViewTypeIdentity             ViewType = "IDENTITY"
	ViewTypeInfrastructureAsCode ViewType = "INFRASTRUCTURE_AS_CODE"
	ViewTypeAdmissionController  ViewType = "ADMISSION_CONTROLLER"
	ViewTypeOffensiveSecurity    ViewType = "OFFENSIVE_SECURITY"
	ViewTypeSecretScanning       ViewType = "SECRET_SCANNING"
)

// ViewTypes lists the accepted values in documentation order.
var ViewTypes = []ViewType{
	ViewTypeAll,
	ViewTypeCloud,
	ViewTypeKubernetes,
	ViewTypeIdentity,
	ViewTypeInfrastructureAsCode,
	ViewTypeAdmissionController,
	ViewTypeOffensiveSecurity,
	ViewTypeSecretScanning,
}

// ParseViewType validates a raw view type value. The empty string maps to
// ALL.
func ParseViewType(raw string) (ViewType, error) {
	if raw == "" {
		return ViewTypeAll, nil
	}
	for _, vt := range ViewTypes {
		if string(vt) == raw {
			return vt, nil
		}
	}
	names := make([]string, len(ViewTypes))
	for i, vt := range ViewTypes {
		names[i] = string(vt)
	}
	return "", fmt.Errorf("invalid view_type '%s', must be one of: %s", raw, strings.Join(names, ", "))
}

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

// Asset is the resource a finding applies to.
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

// Scope places a finding in the management hierarchy.
type Scope struct {
	Account *ScopeRef `json:"account,omitempty"`
	Site    *ScopeRef `json:"site,omitempty"`
	Group   *ScopeRef `json:"group,omitempty"`
}

// Assignee is the user a finding is assigned to.
type Assignee struct {
	ID       string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Deleted  *bool  `json:"deleted,omitempty"`
}

// Policy identifies the rule that produced a CNAPP finding.
type Policy struct {
	ID      string `json:"id,omitempty"`
	Version string `json:"version,omitempty"`
	Group   string `json:"group,omitempty"`
}

// Cnapp carries cloud-native policy context.
type Cnapp struct {
	Policy              *Policy `json:"policy,omitempty"`
	VerifiedExploitable *bool   `json:"verifiedExploitable,omitempty"`
}

// Evidence points at the artifact that triggered a finding.
type Evidence struct {
	FileName     string `json:"fileName,omitempty"`
	FileType     string `json:"fileType,omitempty"`
	IacFramework string `json:"iacFramework,omitempty"`
	IPAddress    string `json:"ipAddress,omitempty"`
	Port         *int   `json:"port,omitempty"`
	Subdomain    string `json:"subdomain,omitempty"`
}

// MitreAttack maps a finding onto the ATT&CK matrix.
type MitreAttack struct {
	TechniqueID   string `json:"techniqueId,omitempty"`
	TechniqueName string `json:"techniqueName,omitempty"`
	TechniqueURL  string `json:"techniqueUrl,omitempty"`
	TacticName    string `json:"tacticName,omitempty"`
	TacticUID     string `json:"tacticUid,omitempty"`
}

// Remediation describes how a finding can be fixed.
type Remediation struct {
	Mitigable       *bool    `json:"mitigable,omitempty"`
	MitigationSteps []string `json:"mitigationSteps,omitempty"`
}

// AdmissionRequest captures the Kubernetes admission event behind a
// finding.
type AdmissionRequest struct {
	Category          string `json:"category,omitempty"`
	ResourceName      string `json:"resourceName,omitempty"`
	ResourceNamespace string `json:"resourceNamespace,omitempty"`
	ResourceType      string `json:"resourceType,omitempty"`
	UserName          string `json:"userName,omitempty"`
	UserUID           string `json:"userUid,omitempty"`
	UserGroup         string `json:"userGroup,omitempty"`
}

// Misconfiguration is the main finding record. Everything except ID is
// optional so custom field selections decode cleanly.
type Misconfiguration struct {
	ID                           string            `json:"id"`
	ExternalID                   string            `json:"externalId,omitempty"`
	Name                         string            `json:"name,omitempty"`
	Description                  string            `json:"description,omitempty"`
	Severity                     string            `json:"severity,omitempty"`
	Status                       string            `json:"status,omitempty"`
	DetectedAt                   string            `json:"detectedAt,omitempty"`
	EventTime                    string            `json:"eventTime,omitempty"`
	LastSeenAt                   string            `json:"lastSeenAt,omitempty"`
	Environment                  string            `json:"environment,omitempty"`
	Product                      string            `json:"product,omitempty"`
	Vendor                       string            `json:"vendor,omitempty"`
	Asset                        *Asset            `json:"asset,omitempty"`
	Scope                        *Scope            `json:"scope,omitempty"`
	AnalystVerdict               string            `json:"analystVerdict,omitempty"`
	Assignee                     *Assignee         `json:"assignee,omitempty"`
	Cnapp                        *Cnapp            `json:"cnapp,omitempty"`
	ComplianceStandards          []string          `json:"complianceStandards,omitempty"`
	DataClassificationCategories []string          `json:"dataClassificationCategories,omitempty"`
	DataClassificationDataTypes  []string          `json:"dataClassificationDataTypes,omitempty"`
	EnforcementAction            string            `json:"enforcementAction,omitempty"`
	Evidence                     *Evidence         `json:"evidence,omitempty"`
	ExclusionPolicyID            string            `json:"exclusionPolicyId,omitempty"`
	ExploitID                    string            `json:"exploitId,omitempty"`
	ExposureReason               string            `json:"exposureReason,omitempty"`
	FindingType                  string            `json:"findingType,omitempty"`
	Mitigable                    *bool             `json:"mitigable,omitempty"`
	MisconfigurationType         string            `json:"misconfigurationType,omitempty"`
	MitreAttacks                 []MitreAttack     `json:"mitreAttacks,omitempty"`
	Organization                 string            `json:"organization,omitempty"`
	Remediation                  *Remediation      `json:"remediation,omitempty"`
	ResourceUID                  string            `json:"resourceUid,omitempty"`
	AdmissionRequest             *AdmissionRequest `json:"admissionRequest,omitempty"`
}

// Note is an analyst comment attached to a finding.
type Note struct {
	ID                 string    `json:"id"`
	MisconfigurationID string    `json:"misconfigurationId,omitempty"`
	Text               string    `json:"text"`
	Author             *Assignee `json:"author,omitempty"`
	CreatedAt          string    `json:"createdAt,omitempty"`
	UpdatedAt          string    `json:"updatedAt,omitempty"`
}

// HistoryEvent is one entry in a finding's audit trail.
type HistoryEvent struct {
	EventType string `json:"eventType"`
	EventText string `json:"eventText"`
	CreatedAt string `json:"createdAt"`
}
