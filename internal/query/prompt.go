package query

import "fmt"

// chatPrompt embeds the question and the book sample for a free-form
// answer grounded in the content.
func chatPrompt(title, author, query, content string) string {
	return fmt.Sprintf(`You are an expert on the book %q by %s. A user has asked the following question about the book:

%q

Please provide a detailed and accurate response based on the book's content. If the question cannot be answered based on the book content, explain why and provide general information that might be helpful.

Here are relevant sections from the book to reference:
%s

Provide a thoughtful, well-structured response that directly addresses the user's question with specific references to the book content where possible.`, title, author, query, content)
}

// chatFallbackPrompt is the shorter retry prompt used when the full prompt
// fails and the content can be cut down to an excerpt.
func chatFallbackPrompt(title, author, query, excerpt string) string {
	return fmt.Sprintf("Based on this excerpt from %q by %s, please answer: %q. Excerpt: %s", title, author, query, excerpt)
}
