// ABOUTME: Builds the context handed to the text generator for follow-up emails
// ABOUTME: The core only renders text; callers talk to the generator
package crm

import (
	"fmt"
	"strings"

	"github.com/harperreed/prospecta/models"
)

// FollowUpPrompt renders the prompt for drafting a relance email about an
// overdue sample. Contacts are optional and only used for the greeting.
func FollowUpPrompt(alert Alert, contacts []models.Contact) string {
	var b strings.Builder
	b.WriteString("Rédige un email de relance court et professionnel, en français, ")
	b.WriteString("pour obtenir un retour sur un échantillon envoyé à un client B2B.\n\n")

	company := "le client"
	if alert.Prospect != nil {
		company = alert.Prospect.CompanyName
		fmt.Fprintf(&b, "Entreprise : %s\n", company)
		if alert.Prospect.Country != "" {
			fmt.Fprintf(&b, "Pays : %s\n", alert.Prospect.Country)
		}
		if alert.Prospect.PotentialVolume != "" {
			fmt.Fprintf(&b, "Volume potentiel : %s\n", alert.Prospect.PotentialVolume)
		}
		fmt.Fprintf(&b, "Étape : %s\n", alert.Prospect.Stage.PlainLabel())
	}

	fmt.Fprintf(&b, "Produit : %s\n", alert.Sample.Product)
	if alert.Sample.Reference != "" {
		fmt.Fprintf(&b, "Référence : %s\n", alert.Sample.Reference)
	}
	if alert.Sample.DateSent != nil {
		fmt.Fprintf(&b, "Envoyé le : %s (il y a %d jours)\n", alert.Sample.DateSent.Format("02/01/2006"), alert.DaysElapsed)
	}

	var names []string
	for _, c := range contacts {
		if n := strings.TrimSpace(c.Name); n != "" {
			if c.Role != "" {
				n += " (" + c.Role + ")"
			}
			names = append(names, n)
		}
	}
	if len(names) > 0 {
		fmt.Fprintf(&b, "Contacts : %s\n", strings.Join(names, ", "))
	}

	fmt.Fprintf(&b, "\nL'email s'adresse à %s. Ne mets pas d'objet, uniquement le corps du message.\n", company)
	return b.String()
}
