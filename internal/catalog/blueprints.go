package catalog

import (
	domain "github.com/mirada-interiors/cms-api/internal/domain"
)

// SystemBlueprints returns the protected blueprint set installed at startup.
// IDs and timestamps are assigned by the registry when seeding; entries that
// already exist by name are left untouched.
func SystemBlueprints() []domain.Blueprint {
	return []domain.Blueprint{
		{
			Name:          "Asset",
			DisplayName:   "Asset",
			Description:   "Uploaded media asset with alt text",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "Image",
			Category:      "media",
			Fields: []domain.Field{
				textField("url", "URL", "الرابط", true),
				textField("altText", "Alt Text", "النص البديل", false),
				{Name: "mimeType", Label: lt("MIME Type", "نوع الملف"), Type: domain.FieldTypeText},
			},
		},
		{
			Name:          "Navigation",
			DisplayName:   "Navigation",
			Description:   "Site navigation menu",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: false,
			IsSystem:      true,
			Icon:          "Menu",
			Category:      "layout",
			Fields: []domain.Field{
				{
					Name: "items", Label: lt("Menu Items", "عناصر القائمة"), Type: domain.FieldTypeRepeater,
					Fields: []domain.Field{
						textField("label", "Label", "التسمية", true),
						textField("href", "Link", "الرابط", true),
					},
				},
			},
		},
		{
			Name:          "Footer",
			DisplayName:   "Footer",
			Description:   "Site footer with links and contact details",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: false,
			IsSystem:      true,
			Icon:          "PanelBottom",
			Category:      "layout",
			Fields: []domain.Field{
				textField("copyright", "Copyright", "حقوق النشر", false),
				{
					Name: "columns", Label: lt("Link Columns", "أعمدة الروابط"), Type: domain.FieldTypeRepeater,
					Fields: []domain.Field{
						textField("title", "Column Title", "عنوان العمود", true),
					},
				},
			},
		},
		{
			Name:          "HeroBanner",
			DisplayName:   "Hero Banner",
			Description:   "Full-width hero with title, subtitle and CTA",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "Presentation",
			Category:      "sections",
			Fields: []domain.Field{
				textField("title", "Title", "العنوان", true),
				textField("subtitle", "Subtitle", "العنوان الفرعي", false),
				{Name: "backgroundImage", Label: lt("Background Image", "صورة الخلفية"), Type: domain.FieldTypeImage},
				textField("ctaText", "CTA Button Text", "نص زر الإجراء", false),
				textField("ctaLink", "CTA Button Link", "رابط زر الإجراء", false),
				{Name: "showOverlay", Label: lt("Show Dark Overlay", "إظهار الطبقة الداكنة"), Type: domain.FieldTypeBoolean},
			},
		},
		{
			Name:          "ImageGallery",
			DisplayName:   "Image Gallery",
			Description:   "Grid or masonry image gallery",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "Images",
			Category:      "media",
			Fields: []domain.Field{
				textField("title", "Title", "العنوان", false),
				{Name: "columns", Label: lt("Columns", "الأعمدة"), Type: domain.FieldTypeNumber, Default: 3},
				{
					Name: "images", Label: lt("Images", "الصور"), Type: domain.FieldTypeRepeater,
					Fields: []domain.Field{
						{Name: "image", Label: lt("Image", "الصورة"), Type: domain.FieldTypeImage, Required: true},
						textField("caption", "Caption", "التعليق", false),
					},
				},
			},
		},
		{
			Name:          "RichText",
			DisplayName:   "Rich Text",
			Description:   "Free-form formatted text content",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "Type",
			Category:      "content",
			Fields: []domain.Field{
				{Name: "content", Label: lt("Content", "المحتوى"), Type: domain.FieldTypeRichText, Required: true, Bilingual: true},
			},
		},
		{
			Name:          "Testimonials",
			DisplayName:   "Testimonials",
			Description:   "Client testimonial carousel",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "Quote",
			Category:      "sections",
			Fields: []domain.Field{
				textField("title", "Section Title", "عنوان القسم", false),
				{
					Name: "testimonials", Label: lt("Testimonials", "آراء العملاء"), Type: domain.FieldTypeRepeater,
					Fields: []domain.Field{
						textField("quote", "Quote", "الاقتباس", true),
						textField("author", "Author", "الكاتب", true),
						textField("role", "Role", "الدور", false),
					},
				},
			},
		},
		{
			Name:          "CTASection",
			DisplayName:   "CTA Section",
			Description:   "Centered call-to-action band",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "MousePointerClick",
			Category:      "sections",
			Fields: []domain.Field{
				textField("title", "Title", "العنوان", true),
				textField("buttonText", "Button Text", "نص الزر", true),
				textField("buttonLink", "Button Link", "رابط الزر", false),
			},
		},
		{
			Name:          "VideoEmbed",
			DisplayName:   "Video Embed",
			Description:   "Embedded video player",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "Video",
			Category:      "media",
			Fields: []domain.Field{
				textField("videoUrl", "Video URL", "رابط الفيديو", true),
				{Name: "autoplay", Label: lt("Autoplay", "تشغيل تلقائي"), Type: domain.FieldTypeBoolean},
			},
		},
		{
			Name:          "FAQSection",
			DisplayName:   "FAQ Section",
			Description:   "Accordion of frequently asked questions",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "HelpCircle",
			Category:      "sections",
			Fields: []domain.Field{
				textField("title", "Section Title", "عنوان القسم", false),
				{
					Name: "faqs", Label: lt("Questions", "الأسئلة"), Type: domain.FieldTypeRepeater,
					Fields: []domain.Field{
						textField("question", "Question", "السؤال", true),
						{Name: "answer", Label: lt("Answer", "الإجابة"), Type: domain.FieldTypeRichText, Required: true, Bilingual: true},
					},
				},
			},
		},
		{
			Name:          "Form",
			DisplayName:   "Form",
			Description:   "Enquiry form with configurable fields",
			Type:          domain.BlueprintTypeComponent,
			AllowMultiple: true,
			IsSystem:      true,
			Icon:          "ClipboardList",
			Category:      "forms",
			Fields: []domain.Field{
				textField("title", "Form Title", "عنوان النموذج", false),
				textField("submitLabel", "Submit Label", "تسمية الإرسال", false),
				{
					Name: "inputType", Label: lt("Input Type", "نوع الإدخال"), Type: domain.FieldTypeSelect,
					Options: []string{"text", "email", "phone", "textarea"},
				},
			},
		},
	}
}

func lt(en, ar string) domain.LocalizedText {
	return domain.LocalizedText{En: en, Ar: ar}
}

func textField(name, en, ar string, required bool) domain.Field {
	return domain.Field{
		Name:     name,
		Label:    lt(en, ar),
		Type:     domain.FieldTypeText,
		Required: required,
	}
}
