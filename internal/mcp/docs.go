package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `compass-mcp walks one decision at a time through three phases: clarify → moves → execute.

Core concepts (keep this mental model small):
- Decision: a container with a monotonic tick (logical clock) and a tree of nodes.
- Node: one deliberation state. Its phase decides which payload it carries (clarify canvas, move options, or a commit plan).
- Canvas: the structured picture of the decision (statement, criteria, constraints, context). Only submit_answer changes it.
- Branch: a fork off any node to explore a what-if. Siblings never see each other's edits.
- Focus: each decision points at exactly one node; navigate moves the pointer without mutating anything.

Rules of engagement (default workflow):
1) Start: call create_decision with the user's situation. It returns the root node and the first question.
2) Clarify: loop submit_answer on the current question until ready_for_options is true. Do not interrogate; the selector stops when more questions stop paying off.
3) Moves: call generate_options, present the options with their good_if framing, then choose_option.
4) Execute: relay the commit plan. Later, when the user reports back, call log_outcome exactly once per node.
5) Revisit: if an assumption or constraint changed, call create_branch (reasons changed_assumption and changed_constraint rewind to clarify).
6) Browse cheaply: list_decisions / search_decisions / get_siblings return summaries, not full payloads.

Error handling:
- CONFLICT means the node changed while your request was in flight. Re-read with get_node and retry.
- INVALID_STATE means you are calling a tool out of phase order. Check the node's phase; phases only move forward on a given node.

Transport notes:
- HTTP: pass session id via Mcp-Session-Id header.
- Stdio: pass session id via _meta.session_id when supported.

Docs (progressive disclosure):
- compass://docs/index (what to read when)
- compass://docs/concepts (glossary + invariants)
- compass://docs/workflows/clarify-loop
- compass://docs/workflows/branching
- compass://docs/workflows/outcomes
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "compass://docs/index",
		Name:        "docs_index",
		Title:       "compass-mcp docs index",
		Description: "Entry point for agent-facing docs: what exists, what to read, and known limitations.",
		Content: `# compass-mcp: Agent Docs Index

This server is designed for **progressive disclosure**: keep your baseline context small and load deeper docs only when needed.

## Quick start (no deep docs)

1. ` + "`create_decision`" + ` with the situation text. Note the first question.
2. Loop ` + "`submit_answer`" + ` until ` + "`ready_for_options`" + ` is true.
3. ` + "`generate_options`" + `, discuss, then ` + "`choose_option`" + `.
4. Relay the commit plan. When the user reports back, ` + "`log_outcome`" + `.
5. If circumstances change, ` + "`create_branch`" + ` instead of re-editing answered nodes.

## Docs (read on demand)

- ` + "`compass://docs/concepts`" + ` — glossary + invariants (phase ordering, canvas, tick conflicts).
- ` + "`compass://docs/workflows/clarify-loop`" + ` — how to run the question loop without interrogating.
- ` + "`compass://docs/workflows/branching`" + ` — when to branch and what each reason does.
- ` + "`compass://docs/workflows/outcomes`" + ` — logging outcomes and reading calibration scores.

## Capabilities & intentional limitations

- Option generation degrades gracefully: when the engine cannot produce options, you get a smaller set with ` + "`degraded: true`" + ` rather than an error.
- One outcome per node, immutable once logged. Branch to re-run a decision.
- Browse tools can return large result sets if you omit ` + "`limit`" + `; use limits to control token usage.

## Where sizes live

` + "`resources/list`" + ` returns each doc resource with a ` + "`size`" + ` (bytes) estimate so clients can budget context.
`,
	},
	{
		URI:         "compass://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Mental model + invariant rules: phase ordering, the canvas, branching, and tick conflicts.",
		Content: `# Concepts and invariants

## Glossary

- **Decision**: container for a node tree. Has a monotonic **tick** that increments on every write.
- **Node**: one deliberation state in ` + "`clarify | moves | execute`" + ` phase. Carries exactly the payload for its phase.
- **Canvas**: statement, weighted criteria, typed constraints (hard/soft), context bullets. Built up one answer at a time.
- **Focus**: per-decision pointer at the node you are working on. ` + "`navigate`" + ` moves it; nothing else does.
- **Branch**: a child node forked with a reason. The child copies its parent's canvas and diverges from there.
- **Outcome**: the real-world result of an executed option, with a Brier score against the option's predicted probability.

## Phase ordering (why it exists)

A node's phase only moves forward: clarify → moves → execute. You cannot generate options before clarification finishes, and you cannot log an outcome before an option is chosen. To revisit an earlier phase, branch; the original node keeps its history intact.

## Constraints: hard vs soft

Hard constraints are non-negotiable and surface as risk tags on options that touch them. Soft constraints are preferences. Phrases like "prefer" or "ideally" classify an answer as soft; restating the same text with firmer wording reclassifies it on the next answer.

## Conflicts are tick-based, not time-based

Every node write carries the tick it read. If the node changed in between, the write fails with CONFLICT instead of silently overwriting. Re-read and retry; do not guess.

## One outcome per node

` + "`log_outcome`" + ` is append-only and resolves the decision. To record a different result, branch and execute again.
`,
	},
	{
		URI:         "compass://docs/workflows/clarify-loop",
		Name:        "docs_workflow_clarify_loop",
		Title:       "Workflow: the clarify loop",
		Description: "How to run the question loop: one question at a time, stop signals, and what not to do.",
		Content: `# Workflow: the clarify loop

Goal: build the canvas with the **fewest questions that still pay off**.

## The loop

1) ` + "`create_decision`" + ` (or ` + "`get_active_node`" + `) gives you the current question.
2) Ask the user that one question. Do not batch questions.
3) ` + "`submit_answer`" + ` with the question id and the user's words.
4) Read the response:
   - ` + "`next_question`" + ` set → continue the loop.
   - ` + "`ready_for_options: true`" + ` → clarification is done; move on.
   - ` + "`stop_reason`" + ` tells you why the loop ended (cap reached, diminishing returns, or pool exhausted).

## What the selector does for you

Questions are scored by expected value of information against the current canvas. Already-covered ground scores low, so the loop naturally avoids asking what the user already said. Trust the ordering; do not skip ahead.

## Anti-patterns

- Do not re-ask an answered question; it returns INVALID_STATE. Branch if the answer changed.
- Do not paraphrase the question beyond recognition; answers feed field extraction.
- Do not call ` + "`generate_options`" + ` early; it returns INVALID_STATE until the selector stops.
`,
	},
	{
		URI:         "compass://docs/workflows/branching",
		Name:        "docs_workflow_branching",
		Title:       "Workflow: branching",
		Description: "When to branch, what each branch reason does, and how siblings relate.",
		Content: `# Workflow: branching

Nodes are immutable history. When circumstances change, **branch** instead of editing.

## Reasons and their effects

- ` + "`changed_assumption`" + ` / ` + "`changed_constraint`" + `: something the canvas was built on no longer holds. The branch rewinds to **clarify** so the selector can probe the changed ground. The copied canvas is kept, so only the delta needs new answers.
- ` + "`new_info`" + ` / ` + "`add_option`" + `: the framing still holds but there is more to consider. The branch keeps the **parent's phase**.

## Sibling independence

Branches never see each other's edits. ` + "`get_siblings`" + ` shows the other children of a node's parent so the user can compare paths; ` + "`navigate`" + ` switches focus between them without mutating anything.

## Picking the branch point

Branch from the deepest node whose canvas is still valid. Use ` + "`get_path`" + ` to walk root-to-node and find where the stale assumption entered.
`,
	},
	{
		URI:         "compass://docs/workflows/outcomes",
		Name:        "docs_workflow_outcomes",
		Title:       "Workflow: outcomes and calibration",
		Description: "Logging outcomes, sentiment windows, and reading Brier scores.",
		Content: `# Workflow: outcomes and calibration

## When to log

After the user has acted on the commit plan and can say whether it moved things forward. Call ` + "`log_outcome`" + ` on the execute node with:

- ` + "`progress_yesno`" + `: did the action produce progress, yes or no.
- ` + "`sentiment_2h`" + ` / ` + "`sentiment_24h`" + ` (optional): how the user felt, on a -2..+2 scale, shortly after and a day after.
- ` + "`notes`" + ` (optional): anything worth remembering.

Logging resolves the decision. It is one-shot per node; a second call returns INVALID_STATE.

## Reading the Brier score

The chosen option carried a predicted probability of success. The Brier score is the squared gap between that prediction and what happened (0 is perfect, 1 is maximally wrong). A confident prediction that failed scores worse than a hedged one.

Use the score qualitatively with the user: consistently high scores mean the predictions (or the clarification behind them) need more skepticism, not that the user decided badly.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
