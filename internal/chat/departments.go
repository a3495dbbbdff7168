package chat

import "math"

// Known departments. Anything else falls back to the generic prompt and an
// empty source list.
const (
	DepartmentHR         = "HR"
	DepartmentFinance    = "Finance"
	DepartmentIT         = "IT"
	DepartmentOperations = "Operations"
	DepartmentGeneral    = "General"
)

const genericSystemPrompt = "You are a helpful enterprise assistant. Answer questions clearly and concisely. " +
	"If you are not sure about company-specific details, say so rather than guessing."

var systemPrompts = map[string]string{
	DepartmentHR: "You are an HR assistant for employees. Answer questions about leave policies, benefits, " +
		"onboarding and workplace guidelines. Be precise and cite the relevant policy when possible.",
	DepartmentFinance: "You are a finance assistant for employees. Answer questions about expense reports, " +
		"reimbursements, budgets and procurement. Never give personal investment advice.",
	DepartmentIT: "You are an IT support assistant for employees. Help with account access, hardware, software " +
		"and security questions. For incidents, point users to the service desk.",
	DepartmentOperations: "You are an operations assistant for employees. Answer questions about facilities, " +
		"logistics, scheduling and internal processes.",
	DepartmentGeneral: genericSystemPrompt,
}

var cannedSources = map[string][]Source{
	DepartmentHR: {
		{Title: "Employee Handbook", Type: "policy", Reference: "HR-001"},
		{Title: "Leave & Absence Policy", Type: "policy", Reference: "HR-014"},
	},
	DepartmentFinance: {
		{Title: "Expense Reimbursement Guide", Type: "document", Reference: "FIN-003"},
		{Title: "Procurement Policy", Type: "policy", Reference: "FIN-021"},
	},
	DepartmentIT: {
		{Title: "IT Security Baseline", Type: "policy", Reference: "IT-002"},
		{Title: "Service Desk Portal", Type: "link", Reference: "https://servicedesk.internal"},
	},
	DepartmentOperations: {
		{Title: "Facilities Handbook", Type: "document", Reference: "OPS-007"},
		{Title: "Logistics Playbook", Type: "document", Reference: "OPS-012"},
	},
	DepartmentGeneral: {
		{Title: "Company Intranet", Type: "link", Reference: "https://intranet.internal"},
		{Title: "New Starter Guide", Type: "document", Reference: "GEN-001"},
	},
}

// SystemPrompt returns the department prompt, or the generic enterprise
// prompt when the department is unknown. Lookup is exact-match.
func SystemPrompt(department string) string {
	if p, ok := systemPrompts[department]; ok {
		return p
	}
	return genericSystemPrompt
}

// CannedSources returns the fixed citation list for a department. Unknown
// departments get an empty list, not the General entries.
func CannedSources(department string) []Source {
	src, ok := cannedSources[department]
	if !ok {
		return []Source{}
	}
	out := make([]Source, len(src))
	copy(out, src)
	return out
}

// EstimateTokens approximates a token count as ceil(len/4). Deliberately
// crude; provider-reported usage takes precedence when available.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len(text)) / 4))
}
