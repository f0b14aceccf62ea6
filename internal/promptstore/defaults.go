package promptstore

const defaultPageSelectionPrompt = `You are selecting which pages of a company website are most likely to contain business-intelligence data (industry, products, leadership, location, founding year, tech stack, social links, and similar fields).

Domain: {{.Domain}}
Confidence threshold: {{.MinConfidence}}
Maximum paths to select: {{.MaxPaths}}

Candidate paths (JSON array):
{{.CandidatePaths}}

Return a JSON object of the form:
{"selected_paths": ["/about", "/contact", ...], "path_explanations": {"/about": "likely company description, founding year, leadership"}}

Only return paths that appear in the candidate list above. Prefer pages likely to contain: company description, products/services, leadership team, location, founding year, funding/stage signals, and contact/social information.`

const defaultExtractionPrompt = `Extract structured business-intelligence fields from the following crawled website content for the company "{{.CompanyName}}".

Pages crawled: {{.PageCount}}
Content length: {{.ContentLength}} characters

Return a single FLAT JSON object (no nested grouping) with exactly these fields, using null for anything not found in the content:
company_name, name, website, company_description, value_proposition, industry, location, founding_year, company_size, employee_count_range, business_model_type, business_model, saas_classification, is_saas, classification_confidence, classification_justification, products_services_offered, key_services, target_market, pain_points, competitive_advantages, tech_stack, company_stage, funding_status, funding_stage_detailed, stage_confidence, tech_sophistication, tech_confidence, industry_confidence, geographic_scope, sales_complexity, key_decision_makers, leadership_team, decision_maker_type, has_job_listings, job_listings_count, job_listings, job_listings_details, recent_news_events, recent_news, has_chat_widget, has_forms, social_media, contact_info, company_culture, awards, certifications, partnerships, ai_summary

Website content:
{{.AggregatedContent}}`

const defaultAnalysisPrompt = `Summarize the extracted company record below in two or three sentences suitable for a sales or research audience. Focus on what the company does, who it sells to, and any notable signals (funding stage, recent news, leadership).

Record:
{{.Record}}`
