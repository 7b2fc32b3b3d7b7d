package templates

// Template bodies, in French, handed to the drafting agent as the base
// text. Placeholders use {{name}} and must all be resolved before sending;
// the response validator rejects any survivor.
var bodies = map[string]string{
	TplPropositionDates: `Bonjour {{prenom}},

Votre dossier est complet et nous pouvons maintenant planifier votre examen.
Voici les dates disponibles :
{{dates_proposees}}

Merci de nous indiquer la date qui vous convient en répondant à ce message.
Vous recevrez une confirmation dès que votre choix sera enregistré.

Cordialement,
L'équipe d'assistance`,

	TplConfirmationSession: `Bonjour {{prenom}},

Nous avons bien enregistré votre préférence pour la session de {{session}}.
Vous recevrez prochainement la confirmation de votre inscription.

Cordialement,
L'équipe d'assistance`,

	TplReportDate: `Bonjour {{prenom}},

Nous avons bien reçu votre demande de report. Voici les prochaines dates
disponibles :
{{dates_proposees}}

Merci de nous indiquer celle qui vous convient.

Cordialement,
L'équipe d'assistance`,

	TplReportBloque: `Bonjour {{prenom}},

Nous avons bien reçu votre demande de report. Malheureusement, votre
inscription est déjà validée et la clôture des inscriptions est dépassée :
la date de votre examen ne peut plus être modifiée.

Nous restons à votre disposition pour toute question.

Cordialement,
L'équipe d'assistance`,

	TplEnvoiIdentifiants: `Bonjour {{prenom}},

Voici vos identifiants de connexion à la plateforme de formation :

Identifiant : {{login}}
Mot de passe : {{mot_de_passe}}

Pensez à vérifier votre dossier de courriers indésirables (spam) si vous ne
recevez pas nos messages.

Cordialement,
L'équipe d'assistance`,

	TplRefusIdentifiants: `Bonjour {{prenom}},

Nous avons bien noté que vous ne souhaitez pas recevoir vos identifiants par
ce canal. Vous pouvez les récupérer à tout moment depuis votre espace
personnel sur la plateforme de formation.

Cordialement,
L'équipe d'assistance`,

	TplConvocationRecue: `Bonjour {{prenom}},

Bonne nouvelle : votre convocation à l'examen a été émise. Vous la recevrez
par courrier et par email à l'adresse enregistrée dans votre dossier.
N'hésitez pas à nous écrire si vous ne la recevez pas sous quelques jours.

Nous vous souhaitons une excellente préparation.

Cordialement,
L'équipe d'assistance`,

	TplResultats: `Bonjour {{prenom}},

Vos résultats d'examen sont disponibles. Vous pouvez les consulter dès
maintenant sur la plateforme, depuis votre espace candidat.

Cordialement,
L'équipe d'assistance`,

	TplRappelExamen: `Bonjour {{prenom}},

Votre examen est planifié le {{date_examen}}. Pensez à vous munir d'une
pièce d'identité en cours de validité le jour de l'épreuve.

Nous vous souhaitons bonne chance.

Cordialement,
L'équipe d'assistance`,

	TplAttenteResultats: `Bonjour {{prenom}},

Votre examen a bien eu lieu et vos résultats sont en cours de traitement.
Nous reviendrons vers vous dès qu'ils seront publiés, sous quelques jours.

Cordialement,
L'équipe d'assistance`,

	TplOffreUberProspect: `Bonjour {{prenom}},

Merci de votre intérêt pour notre formation. Un conseiller va étudier votre
demande et reviendra vers vous rapidement avec les prochaines étapes.

Cordialement,
L'équipe d'assistance`,

	TplReponseGenerale: `Bonjour {{prenom}},

Merci pour votre message. Nous avons bien pris en compte votre demande et
nous reviendrons vers vous dans les meilleurs délais.

Cordialement,
L'équipe d'assistance`,
}

// Body returns the base text for a template name.
func Body(name string) (string, bool) {
	b, ok := bodies[name]
	return b, ok
}

// Names returns every known template name, for catalog cross-checks.
func Names() []string {
	out := make([]string, 0, len(bodies))
	for name := range bodies {
		out = append(out, name)
	}
	return out
}
