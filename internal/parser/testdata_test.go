package parser

const hubspotDoc = `[Title]
HubSpot + Ruh AI: Automated CRM Intelligence

[One-line connector statement]
Connect HubSpot with Ruh AI to automate CRM updates and outbound logging. Power your AI SDR and Work-Lab with real-time pipeline data.

[Overview paragraph]
Ruh AI eliminates manual data entry by bridging the gap between your outreach and your CRM.

[Core Capabilities]
Ruh AI maintains a bi-directional flow with the following HubSpot objects:
* Identity Data: Contacts, companies, and custom properties.
* Deal Management: Pipeline stages, deal values, and ownership tracking.
* Permission Controls

[Common Automation Workflows]
Common automation workflows include:
* Automated Activity Logging: Ruh logs outreach attempts instantly.
* Pipeline Progression: Deal stages update when a meeting is booked: no manual step.

[Key Benefits]
* Data Integrity: Maintain a cleaner CRM.
* Accelerated Velocity: Drive faster follow-ups.

[Security and Permissions]
Ruh AI prioritizes data governance. OAuth 2.0 authentication ensures only authorized users can access or modify data.

[FAQs]
Q: Does HubSpot sync both ways?
A: Yes, records flow in both directions.
Q: Which objects are supported?
A: Contacts, companies and deals.
Q: How is access controlled?
A: Through OAuth 2.0 and existing HubSpot permissions.
`
