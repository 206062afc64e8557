package main

type Skill struct {
	Name  string
	Icon  string
	Color string
}

type Learning struct {
	Name        string
	Description string
	Color       string
}

type Project struct {
	Title           string
	LongDescription string
	Tech            []string
	GitHub          string
	Demo            string
	Features        []string
	Screenshot      string
	KeyAchievements []string
}

type Experience struct {
	Period      string
	Title       string
	Description string
}

var (
	OwnerName = "Mohamed Salah"
	Tagline   = "Full-Stack Web Developer | MERN Stack Specialist"

	Intro = `Passionate junior developer crafting modern web applications with MongoDB, Express.js, React, and Node.js.
	I bring ideas to life through clean code and intuitive user experiences.`

	AboutMe = []string{
		`Welcome to my digital space! I'm a passionate junior full-stack developer specializing in the MERN stack.
		My journey into web development began with curiosity and has evolved into a deep love for creating
		meaningful digital experiences.`,
		`I thrive on transforming ideas into functional, beautiful web applications. Whether it's building
		responsive frontends with React or crafting robust backends with Node.js and Express, I approach each
		project with enthusiasm and attention to detail.`,
		`When I'm not coding, you'll find me exploring new technologies, contributing to open-source projects,
		or planning my next big idea. I believe in continuous learning and staying updated with the latest
		trends in web development.`,
	}

	Skills = []Skill{
		{Name: "MongoDB", Icon: "database", Color: "text-green-400"},
		{Name: "Express.js", Icon: "server", Color: "text-yellow-400"},
		{Name: "React.js", Icon: "code", Color: "text-cyan-400"},
		{Name: "Node.js", Icon: "globe", Color: "text-emerald-400"},
		{Name: "Web Extensions", Icon: "chrome", Color: "text-blue-400"},
		{Name: "DSA", Icon: "puzzle", Color: "text-purple-400"},
	}

	AdditionalTech = []string{
		"JavaScript", "HTML5", "CSS3", "Tailwind CSS", "Git", "JWT", "REST APIs", "Mongoose", "npm",
		"Chrome APIs", "Browser Extensions", "Algorithms", "Problem Solving",
	}

	CurrentlyLearning = []Learning{
		{Name: "Next.js", Description: "SSR/SSG, API Routes, and App Router", Color: "border-purple-500 text-purple-300"},
		{Name: "SQL & PostgreSQL", Description: "Relational databases, complex queries, and optimization", Color: "border-blue-500 text-blue-300"},
		{Name: "TypeScript", Description: "Static type checking for scalable applications", Color: "border-yellow-500 text-yellow-300"},
	}

	Projects = []Project{
		{
			Title: "StudyBuddy",
			LongDescription: `An all-in-one study management application designed to help students and professionals
			organize their learning journey, with study scheduling, collaborative notes, progress analytics and
			calendar integration.`,
			Tech:       []string{"React", "Node.js", "Express", "MongoDB", "Gemini AI", "Agenda.js"},
			GitHub:     "https://github.com/Mohamed-Salah-222/StudyBuddy",
			Demo:       "https://study-buddy-blush.vercel.app/",
			Features:   []string{"AI-Powered Chat Assistant", "Smart Study Planning", "Real-time Push Notifications", "Background Job Scheduling", "Discussion Forums"},
			Screenshot: "Study.png",
			KeyAchievements: []string{
				"Integrated Google's Gemini AI API to answer questions in the context of the user's study materials.",
				"Used Agenda.js to reliably schedule timed notifications and reminders.",
				"Designed a MongoDB schema for users, study sessions, notes and AI chat history.",
			},
		},
		{
			Title: "Recipe Share App",
			LongDescription: `A community-driven platform where food lovers share recipes, discover new cuisines and
			connect with fellow cooks, with search and filtering, collections, step-by-step guides, comments and
			ratings.`,
			Tech:       []string{"React", "Node.js", "Express", "MongoDB", "Cloudinary"},
			GitHub:     "https://github.com/Mohamed-Salah-222/Recipe-App",
			Demo:       "https://recipe-app-blush-three.vercel.app/",
			Features:   []string{"Recipe Sharing & Discovery", "Advanced Search & Filters", "User Profiles & Collections", "Photo Upload & Storage", "Community Ratings & Reviews"},
			Screenshot: "recipe pic.png",
			KeyAchievements: []string{
				"Built the image upload pipeline on Cloudinary for user-generated recipe photos.",
				"Implemented search by ingredients, cuisine and dietary restrictions.",
				"Created a responsive React front-end for browsing, creating and sharing recipes.",
			},
		},
		{
			Title: "E-Commerce Platform",
			LongDescription: `A full online store with product filtering, JWT authentication, Stripe payments and an
			admin dashboard for inventory, covering everything from registration to order fulfillment.`,
			Tech:       []string{"React", "Node.js", "Express", "MongoDB", "JWT", "Stripe"},
			GitHub:     "https://github.com/Mohamed-Salah-222/E-Commerce-App",
			Demo:       "https://e-commerce-app-neon-eight.vercel.app/",
			Features:   []string{"User Authentication & Authorization", "Shopping Cart & Checkout", "Payment Integration", "Admin Dashboard", "Product Reviews & Ratings"},
			Screenshot: "E1.png",
			KeyAchievements: []string{
				"Moved product photos to Cloudinary to fix persistent image hosting issues.",
				"Implemented Stripe payment intents and webhooks for order confirmation.",
				"Built JWT authentication with protected user routes and a separate admin dashboard.",
			},
		},
		{
			Title: "Prayer Reminder Extension",
			LongDescription: `A browser extension that calculates prayer times from the user's location and reminds
			them through browser and system notifications, with per-region calculation methods.`,
			Tech:       []string{"JavaScript", "Chrome APIs", "HTML5", "CSS3", "Geolocation API", "Notification API"},
			GitHub:     "https://github.com/Mohamed-Salah-222/Prayer-Extension",
			Demo:       "#",
			Features:   []string{"Accurate Prayer Time Calculations", "System & Browser Notifications", "Location-Based Timing", "Customizable Reminder Settings", "Beautiful Daily Schedule Interface"},
			Screenshot: "Prayer1.png",
			KeyAchievements: []string{
				"Used the Geolocation API to detect the user's location for accurate prayer times.",
				"Managed extension permissions for location access and system-level notifications.",
				"Kept background alerts lightweight so they do not drain system resources.",
			},
		},
	}

	Experiences = []Experience{
		{
			Period: "2025 - Present",
			Title:  "Full-Stack Developer",
			Description: `Specialized in MERN stack development with a focus on performance and user experience,
			shipping applications with AI integration, real-time notifications and browser extensions.`,
		},
		{
			Period: "2025",
			Title:  "Personal Projects & Learning",
			Description: `Built e-commerce platforms with payment integration, AI-powered study tools and browser
			extensions while focusing on modern practices and scalable architecture.`,
		},
	}
)
