package analysis

import (
	"fmt"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/storage"
)

// Analysis depth constants
const (
	DepthModerate = "moderate"
	DepthDeep     = "deep"
)

func analysisPrompt(src storage.SourceItem, content, depth string) string {
	if depth == DepthDeep {
		return fmt.Sprintf(`Analyze this conversation transcript in DEEP RESEARCH mode:

Name: %s
Date: %s

Transcript:
%s

Provide an IN-DEPTH analysis with:
**Overview**
* Purpose and objectives
* Key participants and their roles
* Duration and structure

**Discussion Topics**
* Main topics covered
* Technical discussions and decisions
* Problem-solving approaches

**Decisions & Action Items**
* Decisions made with context and reasoning
* Action items with owners and deadlines
* Dependencies and blockers identified

**Key Insights**
* Important quotes and moments
* Agreements reached
* Follow-up requirements

Keep well-structured with clear bullet points.`,
			src.Name, src.UploadedAt.Format("2006-01-02"), content)
	}

	return fmt.Sprintf(`Analyze this conversation transcript and provide a concise summary:

Name: %s
Date: %s

Transcript:
%s

Provide a summary with:
**Overview**
* Purpose
* Key participants

**Main Topics**
* Topics discussed
* Important points

**Action Items**
* Decisions made
* Next steps with owners

**Key Takeaways**
* Important insights
* Follow-ups needed

Keep it concise and well-structured.`,
		src.Name, src.UploadedAt.Format("2006-01-02"), content)
}

func fallbackPrompt(artifact storage.Artifact, question string) string {
	return fmt.Sprintf(`Conversation: %s

Summary:
%s

Question: %s

Provide a concise, direct answer based on the summary. If the information isn't in the summary, say so.`,
		artifact.SourceName, artifact.Summary, question)
}
