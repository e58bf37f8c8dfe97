package textnorm

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
		"are", "aren", "as", "at", "be", "because", "been", "before", "being", "below", "between",
		"both", "but", "by", "can", "cannot", "could", "couldn", "did", "didn", "do", "does",
		"doesn", "doing", "don", "down", "during", "each", "even", "ever", "every", "few", "for",
		"from", "further", "get", "got", "had", "hadn", "has", "hasn", "have", "haven", "having",
		"he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "however", "i",
		"if", "in", "into", "is", "isn", "it", "its", "itself", "just", "let", "like", "lot",
		"many", "may", "me", "might", "more", "most", "much", "must", "my", "myself", "never",
		"no", "nor", "not", "now", "of", "off", "on", "once", "one", "only", "or", "other",
		"ought", "our", "ours", "ourselves", "out", "over", "own", "really", "same", "shall",
		"she", "should", "shouldn", "since", "so", "some", "still", "such", "than", "that",
		"the", "their", "theirs", "them", "themselves", "then", "there", "these", "they",
		"thing", "things", "think", "this", "those", "though", "through", "to", "too", "under",
		"until", "up", "upon", "us", "very", "was", "wasn", "we", "well", "were", "weren",
		"what", "when", "where", "whether", "which", "while", "who", "whom", "why", "will",
		"with", "within", "without", "won", "would", "wouldn", "yet", "you", "your", "yours",
		"yourself", "yourselves",
	} {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord reports whether w (already folded) is an English stop word.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
