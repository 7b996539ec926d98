package i18n

// getDefaultMessages returns the default message translations.
func getDefaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			// Error messages
			ErrKeyInvalidRequest:       "Invalid request",
			ErrKeyInvalidRequestBody:   "Invalid request body",
			ErrKeyInternalError:        "An unexpected error occurred",
			ErrKeyNotFound:             "Not found",
			ErrKeyConflict:             "Conflict",
			ErrKeyTimeout:              "The request took too long",
			ErrKeyRateLimitExceeded:    "Too many requests, please try again later",
			ErrKeyServiceUnavailable:   "Storage is temporarily unavailable, please try again later",
			ErrKeySessionNotFound:      "No plan exists for this order",
			ErrKeySessionClosed:        "The plan was closed, open it again",
			ErrKeyBackendNotConfigured: "No persistence backend is configured",
			ErrKeyInvalidTemplate:      "Invalid pallet template",
			ErrKeyInvoiceRequired:      "An invoice file is required",
			ErrKeyUnsupportedFormat:    "Unsupported invoice format, use CSV or XLSX",
			ErrKeyEmptyInvoice:         "The invoice has no line items",
			ErrKeyMissingColumns:       "The invoice header lacks required columns",
			ErrKeySyncFailed:           "Changes could not be saved, they will be retried",
			ErrKeyExportFailed:         "The loading plan could not be generated",

			// Rejections
			RejectionKeyFitFailure:     "The product does not fit on this pallet",
			RejectionKeyNotFound:       "Product or package not found",
			RejectionKeyInvalidRange:   "Position or count out of range",
			RejectionKeyPalletAssigned: "The package already has a pallet",
			RejectionKeyNoPallet:       "Assign a pallet to the package first",
			RejectionKeyInvalidInput:   "Invalid product or package data",

			// Success messages
			SuccessKeyPlanOpened:      "Plan opened",
			SuccessKeyPlanUpdated:     "Plan updated",
			SuccessKeyPlanSubmitted:   "Changes saved",
			SuccessKeyPlanClosed:      "Plan closed",
			SuccessKeyTemplateSaved:   "Pallet template saved",
			SuccessKeyTemplateDeleted: "Pallet template deleted",

			// Loading plan document
			DocKeyTitle:           "Loading plan",
			DocKeyOrder:           "Order",
			DocKeyReference:       "Reference",
			DocKeyTruck:           "Truck",
			DocKeyWeightTier:      "Weight tier",
			DocKeyTotalWeight:     "Total weight (kg)",
			DocKeyLinearMeters:    "Loading meters",
			DocKeyRemainingArea:   "Remaining floor (m2)",
			DocKeyRemainingWeight: "Remaining payload (kg)",
			DocKeyOverweight:      "OVERWEIGHT",
			DocKeyPackage:         "Package",
			DocKeyFill:            "Fill",
			DocKeyPool:            "Not loaded",
			DocKeyProduct:         "Product",
			DocKeyName:            "Name",
			DocKeyCount:           "Count",
			DocKeyDimensions:      "W x H x D (cm)",
			DocKeyWeight:          "Weight (kg)",
			DocKeyGenerated:       "Generated",
			DocKeyEmpty:           "No products",
		},
		"pt": {
			// Error messages
			ErrKeyInvalidRequest:       "Requisição inválida",
			ErrKeyInvalidRequestBody:   "Corpo da requisição inválido",
			ErrKeyInternalError:        "Ocorreu um erro inesperado",
			ErrKeyNotFound:             "Não encontrado",
			ErrKeyConflict:             "Conflito",
			ErrKeyTimeout:              "A requisição demorou demais",
			ErrKeyRateLimitExceeded:    "Muitas requisições, tente novamente mais tarde",
			ErrKeyServiceUnavailable:   "Armazenamento temporariamente indisponível, tente novamente mais tarde",
			ErrKeySessionNotFound:      "Não existe plano para este pedido",
			ErrKeySessionClosed:        "O plano foi fechado, abra-o novamente",
			ErrKeyBackendNotConfigured: "Nenhum backend de persistência configurado",
			ErrKeyInvalidTemplate:      "Modelo de palete inválido",
			ErrKeyInvoiceRequired:      "É necessário um arquivo de fatura",
			ErrKeyUnsupportedFormat:    "Formato de fatura não suportado, use CSV ou XLSX",
			ErrKeyEmptyInvoice:         "A fatura não tem itens",
			ErrKeyMissingColumns:       "O cabeçalho da fatura não tem as colunas obrigatórias",
			ErrKeySyncFailed:           "As alterações não foram salvas, serão tentadas novamente",
			ErrKeyExportFailed:         "Não foi possível gerar o plano de carga",

			// Rejections
			RejectionKeyFitFailure:     "O produto não cabe neste palete",
			RejectionKeyNotFound:       "Produto ou pacote não encontrado",
			RejectionKeyInvalidRange:   "Posição ou quantidade fora do intervalo",
			RejectionKeyPalletAssigned: "O pacote já tem um palete",
			RejectionKeyNoPallet:       "Atribua primeiro um palete ao pacote",
			RejectionKeyInvalidInput:   "Dados de produto ou pacote inválidos",

			// Success messages
			SuccessKeyPlanOpened:      "Plano aberto",
			SuccessKeyPlanUpdated:     "Plano atualizado",
			SuccessKeyPlanSubmitted:   "Alterações salvas",
			SuccessKeyPlanClosed:      "Plano fechado",
			SuccessKeyTemplateSaved:   "Modelo de palete salvo",
			SuccessKeyTemplateDeleted: "Modelo de palete removido",

			// Loading plan document
			DocKeyTitle:           "Plano de carga",
			DocKeyOrder:           "Pedido",
			DocKeyReference:       "Referência",
			DocKeyTruck:           "Caminhão",
			DocKeyWeightTier:      "Faixa de peso",
			DocKeyTotalWeight:     "Peso total (kg)",
			DocKeyLinearMeters:    "Metros de carga",
			DocKeyRemainingArea:   "Piso restante (m2)",
			DocKeyRemainingWeight: "Carga restante (kg)",
			DocKeyOverweight:      "EXCESSO DE PESO",
			DocKeyPackage:         "Pacote",
			DocKeyFill:            "Ocupação",
			DocKeyPool:            "Não carregado",
			DocKeyProduct:         "Produto",
			DocKeyName:            "Nome",
			DocKeyCount:           "Qtd",
			DocKeyDimensions:      "L x A x P (cm)",
			DocKeyWeight:          "Peso (kg)",
			DocKeyGenerated:       "Gerado em",
			DocKeyEmpty:           "Sem produtos",
		},
		"nl": {
			// Error messages
			ErrKeyInvalidRequest:       "Ongeldig verzoek",
			ErrKeyInvalidRequestBody:   "Ongeldige aanvraag body",
			ErrKeyInternalError:        "Er is een onverwachte fout opgetreden",
			ErrKeyNotFound:             "Niet gevonden",
			ErrKeyConflict:             "Conflict",
			ErrKeyTimeout:              "Het verzoek duurde te lang",
			ErrKeyRateLimitExceeded:    "Te veel verzoeken, probeer het later opnieuw",
			ErrKeyServiceUnavailable:   "Opslag is tijdelijk niet beschikbaar, probeer het later opnieuw",
			ErrKeySessionNotFound:      "Er bestaat geen planning voor deze order",
			ErrKeySessionClosed:        "De planning is gesloten, open deze opnieuw",
			ErrKeyBackendNotConfigured: "Er is geen opslag geconfigureerd",
			ErrKeyInvalidTemplate:      "Ongeldig palletsjabloon",
			ErrKeyInvoiceRequired:      "Een factuurbestand is vereist",
			ErrKeyUnsupportedFormat:    "Factuurformaat niet ondersteund, gebruik CSV of XLSX",
			ErrKeyEmptyInvoice:         "De factuur bevat geen regels",
			ErrKeyMissingColumns:       "De factuurkop mist verplichte kolommen",
			ErrKeySyncFailed:           "Wijzigingen konden niet worden opgeslagen, ze worden opnieuw geprobeerd",
			ErrKeyExportFailed:         "Het laadplan kon niet worden gemaakt",

			// Rejections
			RejectionKeyFitFailure:     "Het product past niet op deze pallet",
			RejectionKeyNotFound:       "Product of colli niet gevonden",
			RejectionKeyInvalidRange:   "Positie of aantal buiten bereik",
			RejectionKeyPalletAssigned: "De colli heeft al een pallet",
			RejectionKeyNoPallet:       "Wijs eerst een pallet toe aan de colli",
			RejectionKeyInvalidInput:   "Ongeldige product- of colligegevens",

			// Success messages
			SuccessKeyPlanOpened:      "Planning geopend",
			SuccessKeyPlanUpdated:     "Planning bijgewerkt",
			SuccessKeyPlanSubmitted:   "Wijzigingen opgeslagen",
			SuccessKeyPlanClosed:      "Planning gesloten",
			SuccessKeyTemplateSaved:   "Palletsjabloon opgeslagen",
			SuccessKeyTemplateDeleted: "Palletsjabloon verwijderd",

			// Loading plan document
			DocKeyTitle:           "Laadplan",
			DocKeyOrder:           "Order",
			DocKeyReference:       "Referentie",
			DocKeyTruck:           "Vrachtwagen",
			DocKeyWeightTier:      "Gewichtsklasse",
			DocKeyTotalWeight:     "Totaalgewicht (kg)",
			DocKeyLinearMeters:    "Laadmeters",
			DocKeyRemainingArea:   "Resterende vloer (m2)",
			DocKeyRemainingWeight: "Resterend laadvermogen (kg)",
			DocKeyOverweight:      "OVERGEWICHT",
			DocKeyPackage:         "Colli",
			DocKeyFill:            "Vulling",
			DocKeyPool:            "Niet geladen",
			DocKeyProduct:         "Product",
			DocKeyName:            "Naam",
			DocKeyCount:           "Aantal",
			DocKeyDimensions:      "B x H x D (cm)",
			DocKeyWeight:          "Gewicht (kg)",
			DocKeyGenerated:       "Gemaakt op",
			DocKeyEmpty:           "Geen producten",
		},
	}
}
