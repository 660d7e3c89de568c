package programrule

import (
	"sort"
	"strconv"
	"strings"
)

// IssueType classifies an issue. ERROR blocks the entity, WARNING never does.
type IssueType string

const (
	IssueError   IssueType = "ERROR"
	IssueWarning IssueType = "WARNING"
)

// IssueCode is the fixed taxonomy of program rule issues.
type IssueCode string

const (
	// E1300 is raised by an explicit show-error or show-warning action.
	E1300 IssueCode = "E1300"
	// E1301 is raised when a mandatory field is missing.
	E1301 IssueCode = "E1301"
	// E1307 is raised when an assignment conflicts with an existing value.
	E1307 IssueCode = "E1307"
	// E1308 reports that a value was assigned by the rule engine.
	E1308 IssueCode = "E1308"
)

var issueTemplates = map[IssueCode]string{
	E1300: "{0}",
	E1301: "Mandatory field `{0}` is not present",
	E1307: "Unable to assign value to field `{0}`. The provided value must be empty or match the calculated value",
	E1308: "Field `{0}` value was assigned to `{1}`",
}

// Issue is a classified finding produced by applying a rule effect.
type Issue struct {
	RuleID string    `json:"ruleId" yaml:"ruleId"`
	Code   IssueCode `json:"issueCode" yaml:"issueCode"`
	Type   IssueType `json:"issueType" yaml:"issueType"`
	Args   []string  `json:"args" yaml:"args"`
}

// Message renders the issue code template with the issue args.
func (i Issue) Message() string {
	tmpl, ok := issueTemplates[i.Code]
	if !ok {
		return strings.Join(i.Args, " ")
	}
	pairs := make([]string, 0, 2*len(i.Args))
	for n, arg := range i.Args {
		pairs = append(pairs, "{"+strconv.Itoa(n)+"}", arg)
	}
	msg := strings.NewReplacer(pairs...).Replace(tmpl)
	if i.RuleID == "" {
		return msg
	}
	return "Generated by program rule (`" + i.RuleID + "`) - " + msg
}

// IsError reports whether the issue blocks the entity.
func (i Issue) IsError() bool { return i.Type == IssueError }

func newError(ruleID string, code IssueCode, args ...string) Issue {
	return Issue{RuleID: ruleID, Code: code, Type: IssueError, Args: args}
}

func newWarning(ruleID string, code IssueCode, args ...string) Issue {
	return Issue{RuleID: ruleID, Code: code, Type: IssueWarning, Args: args}
}

// Issues collects issues keyed by tracker object UID. Entities without
// issues have no entry.
type Issues map[string][]Issue

// Add appends issues for uid. Adding nothing creates no entry.
func (is Issues) Add(uid string, issues ...Issue) {
	if len(issues) == 0 {
		return
	}
	is[uid] = append(is[uid], issues...)
}

// Merge appends all issues of other.
func (is Issues) Merge(other Issues) {
	for uid, issues := range other {
		is.Add(uid, issues...)
	}
}

// HasErrors reports whether uid has at least one ERROR issue.
func (is Issues) HasErrors(uid string) bool {
	for _, i := range is[uid] {
		if i.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the ERROR issues of uid.
func (is Issues) Errors(uid string) []Issue {
	return is.filter(uid, IssueError)
}

// Warnings returns the WARNING issues of uid.
func (is Issues) Warnings(uid string) []Issue {
	return is.filter(uid, IssueWarning)
}

// Blocked returns the sorted UIDs that carry at least one ERROR issue.
func (is Issues) Blocked() []string {
	var uids []string
	for uid := range is {
		if is.HasErrors(uid) {
			uids = append(uids, uid)
		}
	}
	sort.Strings(uids)
	return uids
}

// Count returns the total number of issues.
func (is Issues) Count() int {
	n := 0
	for _, issues := range is {
		n += len(issues)
	}
	return n
}

func (is Issues) filter(uid string, t IssueType) []Issue {
	var out []Issue
	for _, i := range is[uid] {
		if i.Type == t {
			out = append(out, i)
		}
	}
	return out
}
