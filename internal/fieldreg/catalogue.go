package fieldreg

// Catalogue construction helpers. Profile fields are singletons on the
// entity profile; stakeholder fields repeat per stakeholder row; doc marks a
// document-reference field.

func profile(n FieldNo, name string, dt DataType, col Column) Definition {
	return Definition{FieldNo: n, Name: name, DataType: dt, TargetRecord: RecordProfile, TargetColumn: col}
}

func profileDoc(n FieldNo, name string, col Column) Definition {
	def := profile(n, name, TypeString, col)
	def.DocumentOnly = true
	return def
}

func stakeholder(n FieldNo, name string, dt DataType, col Column) Definition {
	return Definition{FieldNo: n, Name: name, DataType: dt, TargetRecord: RecordStakeholder, TargetColumn: col, Repeating: true}
}

func stakeholderDoc(n FieldNo, name string, col Column) Definition {
	def := stakeholder(n, name, TypeString, col)
	def.DocumentOnly = true
	return def
}

// catalogue is the full field registry, dense over 1..119 minus the reserved
// numbers 13, 47, 48 and 90.
var catalogue = []Definition{
	// Core identity
	profile(1, "Legal name", TypeString, "legal_name"),
	profile(2, "Trading name", TypeString, "trading_name"),
	profile(3, "Entity type", TypeEnum, "entity_type"),
	profile(4, "Entity legal form", TypeString, "entity_legal_form"),
	profile(5, "Jurisdiction", TypeEnum, "jurisdiction"),
	profile(6, "Country of incorporation", TypeEnum, "country_of_incorporation"),
	profile(7, "Registration number", TypeString, "registration_number"),
	profile(8, "LEI", TypeString, "lei"),
	profile(9, "Incorporation date", TypeDate, "incorporation_date"),
	profile(10, "Entity status", TypeEnum, "entity_status"),
	profile(11, "Tax identification number", TypeString, "tax_id"),
	profile(12, "VAT number", TypeString, "vat_number"),
	// 13 reserved

	// Registered address
	profile(14, "Registered address line 1", TypeString, "registered_address_line1"),
	profile(15, "Registered address line 2", TypeString, "registered_address_line2"),
	profile(16, "Registered address city", TypeString, "registered_address_city"),
	profile(17, "Registered address region", TypeString, "registered_address_region"),
	profile(18, "Registered address postal code", TypeString, "registered_address_postal_code"),
	profile(19, "Registered address country", TypeEnum, "registered_address_country"),
	profile(20, "Registered address since", TypeDate, "registered_address_since"),

	// Principal place of business
	profile(21, "Business address line 1", TypeString, "business_address_line1"),
	profile(22, "Business address line 2", TypeString, "business_address_line2"),
	profile(23, "Business address city", TypeString, "business_address_city"),
	profile(24, "Business address region", TypeString, "business_address_region"),
	profile(25, "Business address postal code", TypeString, "business_address_postal_code"),
	profile(26, "Business address country", TypeEnum, "business_address_country"),
	profile(27, "Business address same as registered", TypeBoolean, "business_address_same_as_registered"),

	// Contact
	profile(28, "Primary contact name", TypeString, "primary_contact_name"),
	profile(29, "Primary contact email", TypeString, "primary_contact_email"),
	profile(30, "Primary contact phone", TypeString, "primary_contact_phone"),
	profile(31, "Website", TypeString, "website"),
	profile(32, "Main phone", TypeString, "main_phone"),
	profile(33, "Main email", TypeString, "main_email"),

	// Business profile
	profile(34, "Industry sector", TypeEnum, "industry_sector"),
	profile(35, "SIC codes", TypeString, "sic_codes"),
	profile(36, "NAICS code", TypeString, "naics_code"),
	profile(37, "Employee count", TypeNumber, "employee_count"),
	profile(38, "Annual revenue", TypeNumber, "annual_revenue"),
	profile(39, "Business description", TypeString, "business_description"),

	// Capital and listing
	profile(40, "Fiscal year end", TypeDate, "fiscal_year_end"),
	profile(41, "Base currency", TypeEnum, "base_currency"),
	profile(42, "Share capital", TypeNumber, "share_capital"),
	profile(43, "Shares issued", TypeNumber, "shares_issued"),
	profile(44, "Publicly traded", TypeBoolean, "is_publicly_traded"),
	profile(45, "Stock exchange", TypeString, "stock_exchange"),
	profile(46, "Ticker symbol", TypeString, "ticker_symbol"),
	// 47, 48 reserved

	// Regulatory and compliance
	profile(49, "Regulatory status", TypeEnum, "regulatory_status"),
	profile(50, "Primary regulator", TypeString, "primary_regulator"),
	profile(51, "License number", TypeString, "license_number"),
	profile(52, "License expiry", TypeDate, "license_expiry"),
	profile(53, "Regulated entity", TypeBoolean, "is_regulated"),
	profile(54, "AML risk rating", TypeEnum, "aml_risk_rating"),
	profile(55, "Sanctions screened", TypeBoolean, "sanctions_screened"),
	profile(56, "Sanctions screened at", TypeDate, "sanctions_screened_at"),
	profile(57, "PEP exposure", TypeBoolean, "pep_exposure"),
	profile(58, "KYC refresh due", TypeDate, "kyc_refresh_due"),

	// Settlement banking
	profile(59, "Settlement bank name", TypeString, "settlement_bank_name"),
	profile(60, "Settlement IBAN", TypeString, "settlement_iban"),
	profile(61, "Settlement BIC", TypeString, "settlement_bic"),
	profile(62, "Settlement currency", TypeEnum, "settlement_currency"),
	profile(63, "Correspondent bank", TypeString, "correspondent_bank"),
	profile(64, "Bank country", TypeEnum, "bank_country"),

	// LEI registration detail
	profile(65, "LEI status", TypeEnum, "lei_status"),
	profile(66, "LEI next renewal", TypeDate, "lei_next_renewal"),
	profile(67, "Managing LOU", TypeString, "managing_lou"),
	profile(68, "Direct parent LEI", TypeString, "direct_parent_lei"),
	profile(69, "Ultimate parent LEI", TypeString, "ultimate_parent_lei"),
	profile(70, "Registry registration status", TypeEnum, "registry_registration_status"),

	// Documents (references to uploaded files, precedence-exempt)
	profileDoc(71, "Certificate of incorporation", "certificate_of_incorporation_doc"),
	profileDoc(72, "Articles of association", "articles_of_association_doc"),
	profileDoc(73, "Registry extract", "registry_extract_doc"),
	profileDoc(74, "Ownership chart", "ownership_chart_doc"),
	profileDoc(75, "Financial statements", "financial_statements_doc"),
	profileDoc(76, "Proof of address", "proof_of_address_doc"),
	profileDoc(77, "Regulatory license", "regulatory_license_doc"),
	profileDoc(78, "Board resolution", "board_resolution_doc"),
	profileDoc(79, "Tax certificate", "tax_certificate_doc"),
	profileDoc(80, "Wolfsberg questionnaire", "wolfsberg_questionnaire_doc"),

	// Group structure
	profile(81, "Legal name (local script)", TypeString, "legal_name_local"),
	profile(82, "Trading countries", TypeString, "trading_countries"),
	profile(83, "Group name", TypeString, "group_name"),
	profile(84, "Direct parent name", TypeString, "direct_parent_name"),
	profile(85, "Ultimate parent name", TypeString, "ultimate_parent_name"),
	profile(86, "Consolidation basis", TypeEnum, "consolidation_basis"),
	profile(87, "Number of subsidiaries", TypeNumber, "number_of_subsidiaries"),
	profile(88, "Incorporation registry name", TypeString, "incorporation_registry_name"),
	profile(89, "External reference", TypeString, "external_reference"),
	// 90 reserved

	// Stakeholders (repeating)
	stakeholder(91, "Stakeholder full name", TypeString, "full_name"),
	stakeholder(92, "Stakeholder role", TypeEnum, "role"),
	stakeholder(93, "Stakeholder ownership percentage", TypeNumber, "ownership_pct"),
	stakeholder(94, "Stakeholder date of birth", TypeDate, "date_of_birth"),
	stakeholder(95, "Stakeholder nationality", TypeEnum, "nationality"),
	stakeholder(96, "Stakeholder country of residence", TypeEnum, "country_of_residence"),
	stakeholder(97, "Stakeholder email", TypeString, "email"),
	stakeholder(98, "Stakeholder phone", TypeString, "phone"),
	stakeholder(99, "Stakeholder address", TypeString, "address"),
	stakeholder(100, "Stakeholder is beneficial owner", TypeBoolean, "is_ubo"),
	stakeholder(101, "Stakeholder is director", TypeBoolean, "is_director"),
	stakeholder(102, "Stakeholder is authorized signatory", TypeBoolean, "is_signatory"),
	stakeholder(103, "Stakeholder appointed on", TypeDate, "appointed_on"),
	stakeholder(104, "Stakeholder resigned on", TypeDate, "resigned_on"),
	stakeholderDoc(105, "Stakeholder identity document", "id_document_doc"),
	stakeholderDoc(106, "Stakeholder proof of address", "proof_of_address_doc"),
	stakeholder(107, "Stakeholder PEP status", TypeBoolean, "pep_status"),
	stakeholder(108, "Stakeholder sanctions hit", TypeBoolean, "sanctions_hit"),
	stakeholder(109, "Stakeholder voting rights percentage", TypeNumber, "voting_rights_pct"),
	stakeholder(110, "Stakeholder source registry id", TypeString, "source_registry_id"),

	// Relationship management
	profile(111, "Next review date", TypeDate, "next_review_date"),
	profile(112, "Onboarding status", TypeEnum, "onboarding_status"),
	profile(113, "Relationship manager", TypeString, "relationship_manager"),
	profile(114, "Client classification", TypeEnum, "client_classification"),
	profile(115, "FATCA status", TypeEnum, "fatca_status"),
	profile(116, "CRS status", TypeEnum, "crs_status"),
	profile(117, "GIIN", TypeString, "giin"),
	profile(118, "BIC code", TypeString, "bic_code"),
	profile(119, "Preferred language", TypeEnum, "preferred_language"),
}
