package catalog

import (
	"time"

	domain "github.com/mirada-interiors/cms-api/internal/domain"
)

// builtinTemplates returns the full template set. Default payloads carry the
// editorial English and Arabic starter copy shown in the template picker.
func builtinTemplates() []domain.Template {
	year := time.Now().Year()

	return []domain.Template{
		{
			ID:          "page-blank",
			Name:        "Blank Page",
			Description: "Start from scratch with an empty page",
			Type:        domain.TemplateTypePage,
			Icon:        "FileText",
		},
		{
			ID:          "page-about",
			Name:        "About Us",
			Description: "Company introduction with mission and team",
			Type:        domain.TemplateTypePage,
			Icon:        "Users",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "hero-simple",
					Order:         0,
					DefaultEn:     domain.Payload{"title": "About Us", "subtitle": "Learn more about our company", "image": ""},
					DefaultAr:     domain.Payload{"title": "من نحن", "subtitle": "تعرف على شركتنا", "image": ""},
				},
				{
					BlueprintName: "text-content",
					Order:         1,
					DefaultEn:     domain.Payload{"content": "<h2>Our Story</h2><p>Company story goes here...</p>"},
					DefaultAr:     domain.Payload{"content": "<h2>قصتنا</h2><p>قصة الشركة هنا...</p>"},
				},
				{
					BlueprintName: "team-grid",
					Order:         2,
					DefaultEn:     domain.Payload{"title": "Our Team", "members": []any{}},
					DefaultAr:     domain.Payload{"title": "فريقنا", "members": []any{}},
				},
			},
			SEO: &domain.TemplateSEO{
				MetaTitleEn: "About Us - Company Name",
				MetaTitleAr: "من نحن - اسم الشركة",
			},
		},
		{
			ID:          "page-contact",
			Name:        "Contact Page",
			Description: "Contact form and company information",
			Type:        domain.TemplateTypePage,
			Icon:        "Mail",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "hero-simple",
					Order:         0,
					DefaultEn:     domain.Payload{"title": "Contact Us", "subtitle": "Get in touch with our team"},
					DefaultAr:     domain.Payload{"title": "اتصل بنا", "subtitle": "تواصل مع فريقنا"},
				},
				{
					BlueprintName: "contact-form",
					Order:         1,
					DefaultEn:     domain.Payload{"showMap": true, "showPhone": true, "showEmail": true},
					DefaultAr:     domain.Payload{"showMap": true, "showPhone": true, "showEmail": true},
				},
			},
		},
		{
			ID:          "blog-standard",
			Name:        "Standard Blog Post",
			Description: "Classic blog article with header and content",
			Type:        domain.TemplateTypeBlog,
			Icon:        "BookOpen",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "blog-header",
					Order:         0,
					DefaultEn:     domain.Payload{"showAuthor": true, "showDate": true, "showCategory": true, "showReadTime": true},
					DefaultAr:     domain.Payload{"showAuthor": true, "showDate": true, "showCategory": true, "showReadTime": true},
				},
				{
					BlueprintName: "featured-image",
					Order:         1,
					DefaultEn:     domain.Payload{"image": "", "caption": ""},
					DefaultAr:     domain.Payload{"image": "", "caption": ""},
				},
				{
					BlueprintName: "rich-text-content",
					Order:         2,
					DefaultEn:     domain.Payload{"content": "<p>Write your article here...</p>"},
					DefaultAr:     domain.Payload{"content": "<p>اكتب مقالك هنا...</p>"},
				},
				{
					BlueprintName: "blog-footer",
					Order:         3,
					DefaultEn:     domain.Payload{"showTags": true, "showShare": true, "showAuthorBio": true},
					DefaultAr:     domain.Payload{"showTags": true, "showShare": true, "showAuthorBio": true},
				},
			},
		},
		{
			ID:          "blog-longform",
			Name:        "Long-form Article",
			Description: "In-depth article with table of contents",
			Type:        domain.TemplateTypeBlog,
			Icon:        "Newspaper",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "blog-header",
					Order:         0,
					DefaultEn:     domain.Payload{"showAuthor": true, "showDate": true},
					DefaultAr:     domain.Payload{"showAuthor": true, "showDate": true},
				},
				{
					BlueprintName: "table-of-contents",
					Order:         1,
					DefaultEn:     domain.Payload{"title": "Table of Contents", "sticky": true},
					DefaultAr:     domain.Payload{"title": "جدول المحتويات", "sticky": true},
				},
				{
					BlueprintName: "rich-text-content",
					Order:         2,
					DefaultEn:     domain.Payload{"content": "<h2>Introduction</h2><p>...</p>"},
					DefaultAr:     domain.Payload{"content": "<h2>المقدمة</h2><p>...</p>"},
				},
			},
		},
		{
			ID:          "project-showcase",
			Name:        "Project Showcase",
			Description: "Portfolio project with image gallery",
			Type:        domain.TemplateTypeProject,
			Icon:        "Briefcase",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "project-hero",
					Order:         0,
					DefaultEn:     domain.Payload{"title": "", "client": "", "category": "", "year": year, "location": ""},
					DefaultAr:     domain.Payload{"title": "", "client": "", "category": "", "year": year, "location": ""},
				},
				{
					BlueprintName: "gallery-masonry",
					Order:         1,
					DefaultEn:     domain.Payload{"columns": 3, "gap": 16, "images": []any{}},
					DefaultAr:     domain.Payload{"columns": 3, "gap": 16, "images": []any{}},
				},
				{
					BlueprintName: "project-details",
					Order:         2,
					DefaultEn:     domain.Payload{"overview": "", "challenge": "", "solution": "", "results": ""},
					DefaultAr:     domain.Payload{"overview": "", "challenge": "", "solution": "", "results": ""},
				},
				{
					BlueprintName: "project-specs",
					Order:         3,
					DefaultEn:     domain.Payload{"specs": []any{}},
					DefaultAr:     domain.Payload{"specs": []any{}},
				},
			},
		},
		{
			ID:          "project-case-study",
			Name:        "Case Study",
			Description: "Detailed project case study with metrics",
			Type:        domain.TemplateTypeProject,
			Icon:        "TrendingUp",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "project-hero",
					Order:         0,
					DefaultEn:     domain.Payload{"title": "", "subtitle": ""},
					DefaultAr:     domain.Payload{"title": "", "subtitle": ""},
				},
				{
					BlueprintName: "case-study-overview",
					Order:         1,
					DefaultEn:     domain.Payload{"client": "", "industry": "", "duration": "", "team": ""},
					DefaultAr:     domain.Payload{"client": "", "industry": "", "duration": "", "team": ""},
				},
				{
					BlueprintName: "metrics-grid",
					Order:         2,
					DefaultEn:     domain.Payload{"metrics": []any{}},
					DefaultAr:     domain.Payload{"metrics": []any{}},
				},
				{
					BlueprintName: "rich-text-content",
					Order:         3,
					DefaultEn:     domain.Payload{"content": "<h2>The Challenge</h2><p>...</p>"},
					DefaultAr:     domain.Payload{"content": "<h2>التحدي</h2><p>...</p>"},
				},
			},
		},
		{
			ID:          "service-standard",
			Name:        "Standard Service",
			Description: "Service page with features and pricing",
			Type:        domain.TemplateTypeService,
			Icon:        "Package",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "hero-service",
					Order:         0,
					DefaultEn:     domain.Payload{"title": "", "subtitle": "", "icon": ""},
					DefaultAr:     domain.Payload{"title": "", "subtitle": "", "icon": ""},
				},
				{
					BlueprintName: "features-list",
					Order:         1,
					DefaultEn:     domain.Payload{"title": "What We Offer", "features": []any{}},
					DefaultAr:     domain.Payload{"title": "ما نقدمه", "features": []any{}},
				},
				{
					BlueprintName: "pricing-card",
					Order:         2,
					DefaultEn:     domain.Payload{"price": "", "duration": "month", "features": []any{}},
					DefaultAr:     domain.Payload{"price": "", "duration": "month", "features": []any{}},
				},
				{
					BlueprintName: "cta-centered",
					Order:         3,
					DefaultEn:     domain.Payload{"title": "Ready to get started?", "buttonText": "Contact Us"},
					DefaultAr:     domain.Payload{"title": "هل أنت مستعد للبدء؟", "buttonText": "اتصل بنا"},
				},
			},
		},
		{
			ID:          "landing-hero-cta",
			Name:        "Hero + CTA",
			Description: "Conversion-focused landing page",
			Type:        domain.TemplateTypeLanding,
			Icon:        "Zap",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "hero-full",
					Order:         0,
					DefaultEn:     domain.Payload{"title": "Transform Your Space", "subtitle": "Professional interior design services", "buttonText": "Get Started", "image": ""},
					DefaultAr:     domain.Payload{"title": "حوّل مساحتك", "subtitle": "خدمات تصميم داخلي احترافية", "buttonText": "ابدأ الآن", "image": ""},
				},
				{
					BlueprintName: "features-grid",
					Order:         1,
					DefaultEn:     domain.Payload{"title": "Why Choose Us", "features": []any{}},
					DefaultAr:     domain.Payload{"title": "لماذا نحن", "features": []any{}},
				},
				{
					BlueprintName: "testimonials",
					Order:         2,
					DefaultEn:     domain.Payload{"title": "What Clients Say", "testimonials": []any{}},
					DefaultAr:     domain.Payload{"title": "آراء العملاء", "testimonials": []any{}},
				},
				{
					BlueprintName: "cta-centered",
					Order:         3,
					DefaultEn:     domain.Payload{"title": "Ready to start your project?", "buttonText": "Contact Us"},
					DefaultAr:     domain.Payload{"title": "هل أنت مستعد لبدء مشروعك؟", "buttonText": "اتصل بنا"},
				},
			},
		},
		{
			ID:          "landing-product",
			Name:        "Product Landing",
			Description: "Product-focused landing with features",
			Type:        domain.TemplateTypeLanding,
			Icon:        "ShoppingCart",
			DefaultSections: []domain.TemplateSection{
				{
					BlueprintName: "hero-product",
					Order:         0,
					DefaultEn:     domain.Payload{"title": "", "subtitle": "", "productImage": "", "price": ""},
					DefaultAr:     domain.Payload{"title": "", "subtitle": "", "productImage": "", "price": ""},
				},
				{
					BlueprintName: "feature-highlights",
					Order:         1,
					DefaultEn:     domain.Payload{"features": []any{}},
					DefaultAr:     domain.Payload{"features": []any{}},
				},
				{
					BlueprintName: "before-after",
					Order:         2,
					DefaultEn:     domain.Payload{"beforeImage": "", "afterImage": "", "title": "See the Difference"},
					DefaultAr:     domain.Payload{"beforeImage": "", "afterImage": "", "title": "شاهد الفرق"},
				},
				{
					BlueprintName: "faq-accordion",
					Order:         3,
					DefaultEn:     domain.Payload{"title": "Frequently Asked Questions", "faqs": []any{}},
					DefaultAr:     domain.Payload{"title": "الأسئلة الشائعة", "faqs": []any{}},
				},
			},
		},
	}
}
