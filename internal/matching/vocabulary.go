package matching

// Tables in this file are read-only after package initialization.

var languages = []string{
	"python", "javascript", "java", "c++", "c#", "ruby", "php", "go", "rust",
	"typescript", "swift", "kotlin", "scala", "r", "matlab",
}

var frameworks = []string{
	"react", "angular", "vue", "django", "flask", "spring", "express",
	"fastapi", "laravel", "rails", "nextjs", "gatsby", "svelte",
}

var tools = []string{
	"docker", "kubernetes", "git", "jenkins", "aws", "azure", "gcp",
	"mongodb", "postgresql", "mysql", "redis", "elasticsearch",
}

// skillVocabulary is the term list used to enrich declared skills of users and jobs.
var skillVocabulary = concat(languages, frameworks, tools)

// synonymClusters groups skills that count as related. The first member is the cluster key.
var synonymClusters = [][]string{
	{"javascript", "js", "ecmascript", "node", "nodejs"},
	{"python", "py", "django", "flask", "fastapi"},
	{"react", "reactjs", "react.js", "react native"},
	{"angular", "angularjs", "angular.js"},
	{"vue", "vuejs", "vue.js"},
	{"machine learning", "ml", "deep learning", "ai", "artificial intelligence"},
	{"database", "sql", "nosql", "mongodb", "postgresql", "mysql"},
	{"cloud", "aws", "azure", "gcp", "google cloud"},
	{"devops", "ci/cd", "docker", "kubernetes", "jenkins"},
}

// clusterIndex maps a term to the indexes of the clusters that contain it.
var clusterIndex = buildClusterIndex(synonymClusters)

// bandPhrases lists the trigger phrases per band, checked in Band order.
var bandPhrases = [...][]string{
	BandEntry:     {"entry level", "junior", "0-2 years", "graduate", "intern"},
	BandMid:       {"mid level", "2-5 years", "3-5 years", "intermediate"},
	BandSenior:    {"senior", "5+ years", "5-10 years", "expert", "lead"},
	BandPrincipal: {"principal", "staff", "10+ years", "architect"},
}

func buildClusterIndex(clusters [][]string) map[string][]int {
	index := make(map[string][]int)
	for i, cluster := range clusters {
		for _, term := range cluster {
			index[term] = append(index[term], i)
		}
	}
	return index
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
