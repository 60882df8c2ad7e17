package analyze

import "fmt"

// summaryPrompt asks for a structured long-form summary of the book.
func summaryPrompt(title, author, sample string) string {
	return fmt.Sprintf(`Please provide a comprehensive summary of the book %q by %s.

Include the following in your summary:
1. Main plot points and narrative arc
2. Key characters and their development
3. Major themes and motifs
4. Writing style and tone
5. Historical or cultural context (if relevant)

Make the summary detailed enough to give a good understanding of the book, but concise enough to be readable in a few minutes.

Here is a sample of the book content to summarize:
%s

Provide a well-structured, engaging summary that captures the essence of the book.`, title, author, sample)
}

// genrePrompt asks for one primary genre and up to three subgenres in a
// fixed textual format. The output is displayed as-is, never parsed.
func genrePrompt(title, author, excerpt string) string {
	return fmt.Sprintf(`Based on the following excerpt from %q by %s, classify the genre of this book.
Consider elements such as setting, themes, style, and plot elements.
Provide a single primary genre and up to three subgenres if applicable.

Excerpt:
%s

Format your response as: Primary Genre: [genre], Subgenres: [subgenre1, subgenre2, subgenre3]`, title, author, excerpt)
}
