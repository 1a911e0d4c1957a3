package analyzer

import (
	"fmt"

	"github.com/hyperjump/kotae/pkg/utils"
)

// complianceSolutionCap bounds how much of the solution text the compliance
// check sees.
const complianceSolutionCap = 1200

// qaRubric is the reference rubric the quality check scores against.
const qaRubric = `Scoring rubric for suggested support answers (0-100):
- Accuracy: the answer addresses the reported issue and contradicts no cited knowledge.
- Actionability: concrete, ordered steps the agent can follow on the call.
- Safety: no credential sharing, no destructive commands without a backup step,
  no disabling of security controls.
- Escalation: Tier-3 scripts are recommended only when a backend fix is needed.
Red flags are short phrases naming specific problems found in the answer.`

func solvePrompt(contextText, issueText string) string {
	prompt := "You are assisting a support agent on a live ticket.\n\n"
	if contextText != "" {
		prompt += "Use the following knowledge when it applies:\n\n" + contextText + "\n\n"
	} else {
		prompt += "No existing knowledge matched this issue.\n\n"
	}
	prompt += "CUSTOMER ISSUE:\n" + issueText + "\n\n"
	prompt += `Reply with exactly one JSON object and nothing else, with these fields:
{
  "solution": "the suggested answer for the agent to give",
  "confidence_score": 0.0 to 1.0,
  "new_knowledge_draft": "Title: ...\n\nBody: ..." or null,
  "recommended_resource": {"type": "KB" or "SCRIPT", "id": "...", "title": "..."} or null
}
Set new_knowledge_draft only when the provided knowledge does not cover this
issue and a new article is worth writing; otherwise use null. When no
knowledge matched, propose a draft and keep confidence_score moderate
(between 0.3 and 0.7). Set recommended_resource only when one of the provided
records is the right next step.`
	return prompt
}

func compliancePrompt(solution string) string {
	return fmt.Sprintf(`Review this suggested support answer for policy compliance.
Unsafe answers share credentials, run destructive commands without a backup,
or disable security controls.

ANSWER:
%s

Reply with a single word: SAFE or UNSAFE.`, utils.Clip(solution, complianceSolutionCap))
}

func qualityPrompt(solution string) string {
	return fmt.Sprintf(`%s

Score this suggested support answer against the rubric.

ANSWER:
%s

Reply with exactly one JSON object:
{"qa_score": 0 to 100, "red_flags": ["..."], "coaching_tip": "one sentence for the agent"}`,
		qaRubric, solution)
}
