package recognition

// buildExtractionPrompt creates the question extraction prompt sent with
// every image
func buildExtractionPrompt() string {
	return `You are an expert educational assistant. Your task is to analyze an image (e.g., from an exam paper or exercise book) and extract ALL distinct questions visible.

**Output Rules:**
1. Return a JSON ARRAY of objects (even if only one question).
2. For "content", use Markdown and LaTeX ($...$) for math formulas.
3. "type" MUST be one of: "SINGLE_CHOICE", "MULTIPLE_CHOICE", "FILL_BLANK", "ESSAY".
4. "options" is a key-value object where:
   - Key = option label (A, B, C, D, etc.)
   - Value = FULL option text/description (not just the label)
5. "answer":
   - For SINGLE_CHOICE: string (e.g., "B")
   - For MULTIPLE_CHOICE: array (e.g., ["A", "C"])
   - If answer is NOT visible in image, set to null
6. "explanation":
   - Detailed step-by-step solution explaining WHY the answer is correct
   - If no explanation visible, provide a brief educational hint
   - If no information available, set to null
7. "difficulty": integer 1-5 (1=easy, 5=hard). Estimate based on question complexity.

**Important:**
- Extract COMPLETE option text, not just labels
- If an option contains a formula or diagram description, include it
- If the image shows both questions and answers, extract both
- If only questions are visible (no answers), set answer/explanation to null

Extract ALL distinct questions found in the image.`
}
