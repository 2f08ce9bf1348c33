package retrieval

import (
	"strings"

	"github.com/spigell/job-recommender/internal/jobs"
)

const catalogPlatform = "Mock Data"

// catalog is appended to thin search results.
var catalog = []jobs.Posting{
	{
		Title:       "Senior Python Developer",
		Company:     "TechCorp AI",
		Location:    "Remote",
		Description: "We are looking for a Python expert with experience in Flask, Django, and AI/ML frameworks. Build scalable backend systems.",
		Skills:      []string{"Python", "Flask", "Django", "AI", "Machine Learning", "REST API"},
		PostedDate:  "2 days ago",
		Salary:      "$80,000 - $120,000",
	},
	{
		Title:       "Full Stack Developer",
		Company:     "WebFlow Systems",
		Location:    "Remote",
		Description: "Join our team to build modern web applications using React, Node.js, and MongoDB. Work on cutting-edge projects.",
		Skills:      []string{"React", "Node.js", "MongoDB", "JavaScript", "TypeScript", "GraphQL"},
		PostedDate:  "1 week ago",
		Salary:      "$70,000 - $100,000",
	},
	{
		Title:       "Data Scientist",
		Company:     "DataFlow Analytics",
		Location:    "Cairo, Egypt",
		Description: "Analyze large datasets and build predictive models using Python and machine learning. Experience with deep learning preferred.",
		Skills:      []string{"Python", "Pandas", "Scikit-learn", "SQL", "Data Analysis", "TensorFlow"},
		PostedDate:  "3 days ago",
		Salary:      "$60,000 - $90,000",
	},
	{
		Title:       "Frontend Engineer",
		Company:     "Creative Web Studio",
		Location:    "Remote",
		Description: "Build beautiful, responsive user interfaces with React and modern CSS. Focus on user experience and performance.",
		Skills:      []string{"React", "CSS", "JavaScript", "HTML", "Tailwind", "Next.js"},
		PostedDate:  "5 days ago",
		Salary:      "$65,000 - $95,000",
	},
	{
		Title:       "DevOps Engineer",
		Company:     "CloudTech Solutions",
		Location:    "Remote",
		Description: "Manage cloud infrastructure, CI/CD pipelines, and containerized applications. AWS and Kubernetes experience required.",
		Skills:      []string{"Docker", "Kubernetes", "AWS", "CI/CD", "Linux", "Terraform"},
		PostedDate:  "1 day ago",
		Salary:      "$75,000 - $110,000",
	},
	{
		Title:       "Machine Learning Engineer",
		Company:     "AI Innovations",
		Location:    "Remote",
		Description: "Develop and deploy machine learning models for production systems. Work with large-scale data and modern ML frameworks.",
		Skills:      []string{"Python", "TensorFlow", "PyTorch", "ML", "Deep Learning", "MLOps"},
		PostedDate:  "4 days ago",
		Salary:      "$90,000 - $130,000",
	},
	{
		Title:       "Backend Developer",
		Company:     "ServerSide Inc",
		Location:    "Remote",
		Description: "Build scalable APIs and microservices using Node.js and Python. Experience with distributed systems is a plus.",
		Skills:      []string{"Node.js", "Python", "PostgreSQL", "REST API", "GraphQL", "Redis"},
		PostedDate:  "6 days ago",
		Salary:      "$70,000 - $105,000",
	},
	{
		Title:       "Mobile Developer",
		Company:     "AppCraft Studios",
		Location:    "Remote",
		Description: "Create cross-platform mobile applications using React Native or Flutter. Build apps used by millions.",
		Skills:      []string{"React Native", "Flutter", "Mobile Development", "iOS", "Android", "Firebase"},
		PostedDate:  "1 week ago",
		Salary:      "$65,000 - $100,000",
	},
	{
		Title:       "UI/UX Designer",
		Company:     "Design Masters",
		Location:    "Remote",
		Description: "Design beautiful and intuitive user interfaces. Work closely with developers to bring designs to life.",
		Skills:      []string{"Figma", "Adobe XD", "UI Design", "UX Research", "Prototyping", "User Testing"},
		PostedDate:  "2 days ago",
		Salary:      "$60,000 - $90,000",
	},
	{
		Title:       "Product Manager",
		Company:     "ProductFlow Inc",
		Location:    "Remote",
		Description: "Lead product development from ideation to launch. Work with cross-functional teams to deliver value.",
		Skills:      []string{"Product Management", "Agile", "Scrum", "Analytics", "Roadmapping", "Stakeholder Management"},
		PostedDate:  "3 days ago",
		Salary:      "$85,000 - $120,000",
	},
}

// Fallback returns up to limit catalogue postings matching any keyword. When
// nothing matches, the first limit postings are returned instead.
func Fallback(keywords []string, limit int) []jobs.Posting {
	if limit <= 0 {
		return nil
	}

	var matched []jobs.Posting
	for _, p := range catalog {
		text := p.Title + " " + p.Description + " " + strings.Join(p.Skills, " ")
		if jobs.MatchesAny(text, keywords) {
			matched = append(matched, fallbackPosting(p))
		}
	}

	if len(matched) == 0 {
		for _, p := range catalog {
			matched = append(matched, fallbackPosting(p))
		}
	}

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func fallbackPosting(p jobs.Posting) jobs.Posting {
	p.Skills = append([]string(nil), p.Skills...)
	p.Platform = catalogPlatform
	p.URL = "#"
	p.JobType = "Full-time"
	return p
}
