package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/medvox/rxscribe/internal/prescription"
)

// extractionPromptTemplate is the schema-constrained instruction set sent to
// the LLM. The transcript and the computed default follow-up date are
// interpolated at call time.
//
// The instructions deliberately restrict the model to the clinician's own
// dictated contribution: patient demographics, clinic metadata, vitals, and
// third-party lab reports originate from other systems and must never be
// hallucinated from context.
const extractionPromptTemplate = `You are a medical prescription assistant.
Your task is to extract ONLY the doctor's dictated contribution from the given transcript.
Do not include patient demographic details, clinic details, vitals, or investigation reports coming from other departments.
Focus only on what the doctor dictated in terms of complaints, findings, diagnosis, prescriptions, investigations, and advice.

Instructions:
1. Carefully read the transcript and extract structured information.
2. If the doctor skips a section, return null for that field (or [] for list fields). Never invent data not present in the transcript.
3. "prescribed_investigations" must be a flat list of discrete canonical test names. Split compound phrases into individual tests (e.g. "blood sugar fasting and postprandial" becomes "Blood sugar fasting" and "Blood sugar postprandial"). Exclude directive phrases such as "please check" or "investigations advised" from the test names.
4. Medicines must be structured objects with clear attributes. Normalize dosage units (e.g. "75mg"), frequency shorthand (OD, BD, TDS, QID, SOS), and route vocabulary (Oral, IV, IM, Topical) when the dictation is unambiguous.
5. "followup_date" must be in YYYY-MM-DD form when a date is stated or derivable. If no follow-up is mentioned, default to one week from today: %s.
6. Always output valid JSON only — no extra text, no explanation, no markdown fencing.

Transcript:
"""%s"""

Return JSON with this schema:

{
  "chief_complaints": string or null,
  "clinical_findings": string or null,
  "diagnosis": string or null,
  "prescribed_investigations": [ "Test 1", "Test 2", ... ],
  "medicines": [
    {
      "brand_name": string or null,
      "generic_name": string or null,
      "dosage": string or null,
      "frequency": string or null,
      "route": string or null,
      "duration": string or null,
      "remarks": string or null
    }
  ],
  "advice": {
    "diet": string or null,
    "exercise": string or null,
    "sleep": string or null,
    "other": string or null
  },
  "followup_date": string (YYYY-MM-DD) or null
}`

// buildPrompt interpolates the transcript and the default follow-up date into
// the extraction prompt.
func buildPrompt(transcript string, now time.Time) string {
	return fmt.Sprintf(extractionPromptTemplate, prescription.DefaultFollowup(now), transcript)
}

// stripMarkdown removes optional markdown code fences (```json ... ```) that
// some models wrap around JSON output despite the JSON-only instruction.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			s = after
			break
		}
	}
	if before, ok := strings.CutSuffix(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
