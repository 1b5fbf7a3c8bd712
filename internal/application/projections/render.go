package projections

import (
	"html/template"
	"strings"
)

// RenderCards assembles public card markup from escaped card values.
// INVARIANT: no unescaped record text reaches the output
func RenderCards(cards []Card) template.HTML {
	return renderCards(cards, "", false)
}

// RenderAdminCards is RenderCards plus edit and delete controls.
// csrfField is the hidden CSRF input included in each delete form.
func RenderAdminCards(cards []Card, csrfField template.HTML) template.HTML {
	return renderCards(cards, csrfField, true)
}

func renderCards(cards []Card, csrfField template.HTML, admin bool) template.HTML {
	if len(cards) == 0 {
		return `<p class="empty">Nothing here yet.</p>`
	}
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(`<article class="card card-` + c.Collection + `" data-id="` + c.ID + `">`)
		if c.HasMedia {
			b.WriteString(`<img src="` + c.MediaSrc + `" alt="` + c.Title + `" loading="lazy">`)
		}
		b.WriteString(`<div class="card-body"><h3>` + c.Title + `</h3>`)
		if c.Meta != "" {
			b.WriteString(`<p class="meta">` + c.Meta + `</p>`)
		}
		if c.Body != "" {
			b.WriteString(`<p>` + c.Body + `</p>`)
		}
		if c.Truncated && c.DetailURL != "" && !admin {
			b.WriteString(`<a href="` + c.DetailURL + `">Read more</a>`)
		}
		if admin {
			b.WriteString(`<div class="card-actions"><a class="btn" href="` + c.EditURL + `">Edit</a>`)
			b.WriteString(`<form method="post" action="` + c.DeleteURL + `" data-confirm="Delete this item?">`)
			b.WriteString(string(csrfField))
			b.WriteString(`<button type="submit" class="btn btn-danger">Delete</button></form></div>`)
		}
		b.WriteString(`</div></article>`)
	}
	return template.HTML(b.String())
}

// RenderEditForm assembles edit form markup from escaped form values.
// INVARIANT: no unescaped record text reaches the output
func RenderEditForm(form EditForm, csrfField template.HTML) template.HTML {
	var b strings.Builder
	b.WriteString(`<form method="post" action="` + form.Action + `" enctype="multipart/form-data" class="edit-form">`)
	b.WriteString(string(csrfField))
	for _, f := range form.Fields {
		required := ""
		if f.Required {
			required = " required"
		}
		b.WriteString(`<label for="` + f.Name + `">` + f.Label + `</label>`)
		switch f.Type {
		case InputTextarea:
			b.WriteString(`<textarea id="` + f.Name + `" name="` + f.Name + `" rows="6"` + required + `>` + f.Value + `</textarea>`)
		case InputSelect:
			b.WriteString(`<select id="` + f.Name + `" name="` + f.Name + `"` + required + `>`)
			for _, o := range f.Options {
				selected := ""
				if o.Selected {
					selected = " selected"
				}
				b.WriteString(`<option value="` + o.Value + `"` + selected + `>` + o.Label + `</option>`)
			}
			b.WriteString(`</select>`)
		default:
			b.WriteString(`<input type="` + f.Type + `" id="` + f.Name + `" name="` + f.Name + `" value="` + f.Value + `"` + required + `>`)
		}
	}
	if form.HasMedia {
		b.WriteString(`<div class="current-media"><img src="` + form.MediaSrc + `" alt="Current image"></div>`)
	}
	b.WriteString(`<label for="image">Replace image (optional)</label>`)
	b.WriteString(`<input type="file" id="image" name="image" accept="image/*">`)
	b.WriteString(`<button type="submit" class="btn btn-primary">Save changes</button>`)
	b.WriteString(`</form>`)
	return template.HTML(b.String())
}
